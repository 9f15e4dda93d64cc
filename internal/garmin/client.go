// internal/garmin/client.go
package garmin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client queries a running Garmin API service. It implements the same
// Source interface as the bulk-export reader, so the importer can be
// pointed at either.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Garmin API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

var _ Source = (*Client)(nil)

func (c *Client) getJSON(path string, query url.Values, v interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.httpClient.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// GetDeviceLastUsed retrieves the most recently used device.
func (c *Client) GetDeviceLastUsed() (*DeviceInfo, error) {
	var device DeviceInfo
	if err := c.getJSON("/device", nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// GetLastActivity retrieves the most recent activity summary.
func (c *Client) GetLastActivity() (*Activity, error) {
	var activity Activity
	if err := c.getJSON("/activities/last", nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetStats retrieves user statistics for a specific date.
func (c *Client) GetStats(date string) (map[string]interface{}, error) {
	var stats map[string]interface{}
	if err := c.getJSON("/stats", url.Values{"date": {date}}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetSleepData retrieves sleep data for a specific date.
func (c *Client) GetSleepData(date string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := c.getJSON("/sleep", url.Values{"date": {date}}, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetHydrationData retrieves hydration data for a specific date.
func (c *Client) GetHydrationData(date string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := c.getJSON("/hydration", url.Values{"date": {date}}, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetActivitiesByDate retrieves all activities in the inclusive date range.
func (c *Client) GetActivitiesByDate(startDate, endDate string) ([]Activity, error) {
	var activities []Activity
	query := url.Values{"startDate": {startDate}, "endDate": {endDate}}
	if err := c.getJSON("/activities", query, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// DownloadActivity downloads an activity file in the requested format.
func (c *Client) DownloadActivity(activityID int64, format DownloadFormat) ([]byte, error) {
	u := fmt.Sprintf("%s/activities/%d/download?format=%s", c.baseURL, activityID, format)

	resp, err := c.httpClient.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
