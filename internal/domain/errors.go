package domain

import "fmt"

// ConfigurationError reports a missing or invalid setting. It is only fatal at startup.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// FetchError reports a capture API call that failed or returned a non-success status.
// StatusCode is zero when no response was received.
type FetchError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch screenshot: HTTP error: %s: %v", e.Status, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch screenshot: HTTP error: %s", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch screenshot: %v", e.Err)
	default:
		return "fetch screenshot: unknown error"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DestinationNotFoundError reports a channel that cannot receive messages from the bot.
type DestinationNotFoundError struct {
	ChannelID string
	Reason    string
	Err       error
}

func (e *DestinationNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("destination %s not found: %s: %v", e.ChannelID, e.Reason, e.Err)
	}
	return fmt.Sprintf("destination %s not found: %s", e.ChannelID, e.Reason)
}

func (e *DestinationNotFoundError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed upload to an existing destination.
type DeliveryError struct {
	ChannelID string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.ChannelID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
