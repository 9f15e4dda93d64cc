// Package garmin defines the Garmin Connect query surface and its API
// record shapes. Two implementations exist: the live API client in this
// package and the bulk-export reader in internal/bulk. Downstream
// consumers only ever see the Source interface, so they are agnostic to
// where the data comes from.
package garmin

// DownloadFormat selects the payload format for DownloadActivity.
type DownloadFormat int

const (
	// FormatOriginal is the recording as uploaded to Connect, wrapped in
	// a single-file zip archive.
	FormatOriginal DownloadFormat = iota
	// FormatTCX is the converted TCX export. Not available from a bulk
	// export, where it yields an empty payload.
	FormatTCX
)

func (f DownloadFormat) String() string {
	if f == FormatTCX {
		return "tcx"
	}
	return "original"
}

// ParseDownloadFormat maps a query-string value onto a DownloadFormat.
// Anything other than "tcx" is treated as the original format.
func ParseDownloadFormat(s string) DownloadFormat {
	if s == "tcx" {
		return FormatTCX
	}
	return FormatOriginal
}

// Activity is an activity summary in Connect API shape.
type Activity struct {
	ActivityID   int64                  `json:"activityId"`
	ActivityName string                 `json:"activityName"`
	StartTimeGMT string                 `json:"startTimeGMT"` // "YYYY-MM-DD HH:MM:SS", UTC
	ActivityType map[string]interface{} `json:"activityType"`
	Distance     float64                `json:"distance"`
	Duration     float64                `json:"duration"`
	AverageSpeed float64                `json:"averageSpeed"`
	MaxSpeed     float64                `json:"maxSpeed"`
	AverageHR    float64                `json:"averageHR"`
	MaxHR        float64                `json:"maxHR"`
	Calories     float64                `json:"calories"`
	LapCount     int                    `json:"lapCount"`
}

// DeviceInfo mirrors the Connect API's device endpoint payload.
type DeviceInfo struct {
	LastUsedDeviceName       string  `json:"lastUsedDeviceName"`
	UserDeviceID             *int64  `json:"userDeviceId"`
	ImageURL                 *string `json:"imageUrl"`
	LastUsedDeviceUploadTime int64   `json:"lastUsedDeviceUploadTime"`
}

// Source is the capability set shared by the live API client and the
// bulk-export reader. Stats, sleep, and hydration payloads keep the
// loosely structured map shape of the underlying API responses; dates
// are calendar-date strings ("YYYY-MM-DD").
type Source interface {
	GetDeviceLastUsed() (*DeviceInfo, error)
	GetLastActivity() (*Activity, error)
	GetStats(date string) (map[string]interface{}, error)
	GetSleepData(date string) (map[string]interface{}, error)
	GetHydrationData(date string) (map[string]interface{}, error)
	GetActivitiesByDate(startDate, endDate string) ([]Activity, error)
	DownloadActivity(activityID int64, format DownloadFormat) ([]byte, error)
}
