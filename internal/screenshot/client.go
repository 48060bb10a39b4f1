// Package screenshot fetches rendered page images from the capture API.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/contract"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
)

// Config describes the capture API endpoint and the fixed capture parameters.
type Config struct {
	BaseURL    string
	APIKey     string
	TargetURL  string
	Dimension  string
	Device     string
	Format     string
	CacheLimit int
	Delay      int
	Zoom       int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client downloads screenshots from the capture API.
type Client struct {
	baseURL    string
	request    entity.CaptureRequest
	httpClient *http.Client
	logger     *slog.Logger
}

var _ contract.Fetcher = (*Client)(nil)

// New builds a capture client, filling unset parameters with defaults.
func New(cfg Config) (*Client, error) {
	baseURL := fallbackString(strings.TrimSpace(cfg.BaseURL), domain.DefaultCaptureAPIURL)
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &domain.ConfigurationError{Field: "SCREENSHOT_API_URL", Message: err.Error()}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultCaptureTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		request: entity.CaptureRequest{
			TargetURL:  fallbackString(cfg.TargetURL, domain.DefaultTargetURL),
			Dimension:  fallbackString(cfg.Dimension, domain.DefaultDimension),
			Device:     fallbackString(cfg.Device, domain.DefaultDevice),
			Format:     fallbackString(cfg.Format, domain.DefaultFormat),
			CacheLimit: cfg.CacheLimit,
			Delay:      cfg.Delay,
			Zoom:       fallbackInt(cfg.Zoom, domain.DefaultZoom),
			APIKey:     cfg.APIKey,
		},
		httpClient: hc,
		logger:     logger,
	}, nil
}

// Request returns the capture parameters used for every fetch.
func (c *Client) Request() entity.CaptureRequest {
	return c.request
}

// URL builds the capture API URL for req.
func (c *Client) URL(req entity.CaptureRequest) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", &domain.ConfigurationError{Field: "SCREENSHOT_KEY", Message: "capture API key is not set"}
	}
	return c.baseURL + "?" + req.Query().Encode(), nil
}

// Fetch downloads the screenshot and streams it to path.
// On error no file is left at path.
func (c *Client) Fetch(ctx context.Context, path string) (*entity.CaptureResult, error) {
	apiURL, err := c.URL(c.request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Err: redact(err)}
	}
	req.Header.Set("User-Agent", "screenshot-bot")

	c.logger.InfoContext(ctx, "downloading screenshot", "target_url", c.request.TargetURL, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Err: redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &domain.FetchError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	n, err := writeFile(path, resp.Body)
	if err != nil {
		return nil, &domain.FetchError{StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}
	if n == 0 {
		_ = os.Remove(path)
		return nil, &domain.FetchError{StatusCode: resp.StatusCode, Status: resp.Status, Err: errors.New("empty response body")}
	}

	return &entity.CaptureResult{
		Path:        path,
		Bytes:       n,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now(),
	}, nil
}

// redact masks the API key in the request URL that net/http puts in its errors.
// The error chain (timeouts, cancellation) is kept.
func redact(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: redactURL(uerr.URL), Err: uerr.Err}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid capture URL>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func writeFile(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	// Hide ReadFrom so the copy goes through buf in fixed-size chunks.
	buf := make([]byte, domain.DefaultDownloadBufSize)
	n, err := io.CopyBuffer(struct{ io.Writer }{out}, r, buf)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}

	return n, nil
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func fallbackInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
