package entity

import (
	"net/url"
	"strconv"
	"time"
)

// CaptureRequest holds the parameters sent to the capture API.
type CaptureRequest struct {
	TargetURL  string
	Dimension  string
	Device     string
	Format     string
	CacheLimit int
	Delay      int
	Zoom       int
	APIKey     string
}

// Query encodes the request as capture API query parameters.
func (r CaptureRequest) Query() url.Values {
	return url.Values{
		"key":        {r.APIKey},
		"url":        {r.TargetURL},
		"dimension":  {r.Dimension},
		"device":     {r.Device},
		"format":     {r.Format},
		"cacheLimit": {strconv.Itoa(r.CacheLimit)},
		"delay":      {strconv.Itoa(r.Delay)},
		"zoom":       {strconv.Itoa(r.Zoom)},
	}
}

// CaptureResult references an image staged on local disk.
type CaptureResult struct {
	Path        string
	Bytes       int64
	ContentType string
	FetchedAt   time.Time
}
