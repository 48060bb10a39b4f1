package domain

import "time"

// Capture API defaults (ScreenshotMachine)
const (
	DefaultCaptureAPIURL   = "https://api.screenshotmachine.com/"
	DefaultTargetURL       = "https://hytale.com/countdown"
	DefaultDimension       = "1366xfull" // full page
	DefaultDevice          = "desktop"
	DefaultFormat          = "png"
	DefaultZoom            = 100
	DefaultCaptureTimeout  = 60 * time.Second
	DefaultDownloadBufSize = 8192
)

// Trigger identifies what started a cycle
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerTestMode  Trigger = "test_mode"
)

// Message texts
const (
	DefaultCaption     = "Here is today's countdown:"
	DefaultTestCaption = "Here is the test screenshot:"
	ManualAckText      = "📸 Taking a test screenshot..."
	LivenessText       = "Bot is alive"
)
