package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/garminbulk-go/internal/garmin"
)

type stubSource struct {
	lastActivityErr error
	downloadedID    int64
	downloadFormat  garmin.DownloadFormat
}

var _ garmin.Source = (*stubSource)(nil)

func (s *stubSource) GetDeviceLastUsed() (*garmin.DeviceInfo, error) {
	return &garmin.DeviceInfo{LastUsedDeviceName: "fenix 6"}, nil
}

func (s *stubSource) GetLastActivity() (*garmin.Activity, error) {
	if s.lastActivityErr != nil {
		return nil, s.lastActivityErr
	}
	return &garmin.Activity{ActivityID: 1001, ActivityName: "Morning Run"}, nil
}

func (s *stubSource) GetStats(date string) (map[string]interface{}, error) {
	return map[string]interface{}{"calendarDate": date, "totalSteps": 9000.0}, nil
}

func (s *stubSource) GetSleepData(date string) (map[string]interface{}, error) {
	return map[string]interface{}{
		"dailySleepDTO": map[string]interface{}{"calendarDate": date},
	}, nil
}

func (s *stubSource) GetHydrationData(date string) (map[string]interface{}, error) {
	return map[string]interface{}{"valueInML": 1500.0}, nil
}

func (s *stubSource) GetActivitiesByDate(startDate, endDate string) ([]garmin.Activity, error) {
	if startDate == "bad" {
		return nil, errors.New("invalid date")
	}
	return []garmin.Activity{{ActivityID: 1001}}, nil
}

func (s *stubSource) DownloadActivity(activityID int64, format garmin.DownloadFormat) ([]byte, error) {
	if activityID == 9999 {
		return nil, errors.New("activity ID not found")
	}
	s.downloadedID = activityID
	s.downloadFormat = format
	return []byte("zip bytes"), nil
}

func newTestRouter(source garmin.Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(source).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(newTestRouter(&stubSource{}), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestDevice(t *testing.T) {
	w := get(newTestRouter(&stubSource{}), "/device")
	require.Equal(t, http.StatusOK, w.Code)

	var device garmin.DeviceInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &device))
	assert.Equal(t, "fenix 6", device.LastUsedDeviceName)
}

func TestStats(t *testing.T) {
	router := newTestRouter(&stubSource{})

	w := get(router, "/stats?date=2024-01-01")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "2024-01-01", stats["calendarDate"])

	assert.Equal(t, http.StatusBadRequest, get(router, "/stats").Code)
}

func TestSleepAndHydrationRequireDate(t *testing.T) {
	router := newTestRouter(&stubSource{})

	assert.Equal(t, http.StatusOK, get(router, "/sleep?date=2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/sleep").Code)
	assert.Equal(t, http.StatusOK, get(router, "/hydration?date=2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/hydration").Code)
}

func TestActivities(t *testing.T) {
	router := newTestRouter(&stubSource{})

	w := get(router, "/activities?startDate=2024-01-01&endDate=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)

	var activities []garmin.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, int64(1001), activities[0].ActivityID)

	assert.Equal(t, http.StatusBadRequest, get(router, "/activities?startDate=2024-01-01").Code)
	assert.Equal(t, http.StatusInternalServerError, get(router, "/activities?startDate=bad&endDate=2024-01-31").Code)
}

func TestLastActivity(t *testing.T) {
	w := get(newTestRouter(&stubSource{}), "/activities/last")
	require.Equal(t, http.StatusOK, w.Code)

	var activity garmin.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activity))
	assert.Equal(t, "Morning Run", activity.ActivityName)
}

func TestLastActivity_Empty(t *testing.T) {
	source := &stubSource{lastActivityErr: errors.New("no activities")}
	w := get(newTestRouter(source), "/activities/last")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownload(t *testing.T) {
	source := &stubSource{}
	router := newTestRouter(source)

	w := get(router, "/activities/1001/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "zip bytes", w.Body.String())
	assert.Equal(t, int64(1001), source.downloadedID)
	assert.Equal(t, garmin.FormatOriginal, source.downloadFormat)

	get(router, "/activities/1001/download?format=tcx")
	assert.Equal(t, garmin.FormatTCX, source.downloadFormat)
}

func TestDownload_BadID(t *testing.T) {
	w := get(newTestRouter(&stubSource{}), "/activities/abc/download")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_UnknownID(t *testing.T) {
	w := get(newTestRouter(&stubSource{}), "/activities/9999/download")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
