package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dbarry-dev/stationtrack/internal/config"
)

// Transcription error kinds. All three are recovered the same way by the
// assistant; the distinction exists so logs can tell a dead gateway apart
// from a mumbled sentence.
var (
	ErrNoSpeech           = errors.New("no speech detected")
	ErrUnrecognized       = errors.New("audio not recognized")
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Client exposes the speech gateway operations used by the assistant.
// Listen blocks until one utterance completes; Say blocks until playback
// finishes on the gateway side.
type Client interface {
	Listen(ctx context.Context) (string, error)
	Say(ctx context.Context, text string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient      *resty.Client
	calibrationSecs int
}

// NewClient builds a speech gateway client using the provided configuration.
func NewClient(cfg config.SpeechConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient:      restyClient,
		calibrationSecs: cfg.CalibrationSecs,
	}
}

type listenResponse struct {
	Transcript string `json:"transcript"`
}

// apiError represents a speech gateway error payload.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Listen captures one utterance and returns its lowercased transcript.
// The gateway calibrates against ambient noise for the configured window
// before recording.
func (c *APIClient) Listen(ctx context.Context) (string, error) {
	payload := map[string]any{
		"calibration_secs": c.calibrationSecs,
	}

	result := new(listenResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/listen")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		switch apiErr.Error.Code {
		case "no_speech":
			return "", ErrNoSpeech
		case "unrecognized":
			return "", ErrUnrecognized
		default:
			return "", fmt.Errorf("%w: status=%d, message=%s", ErrServiceUnavailable, resp.StatusCode(), apiErr.Error.Message)
		}
	}

	return strings.ToLower(result.Transcript), nil
}

// Say speaks the given text through the gateway, blocking until playback
// completes.
func (c *APIClient) Say(ctx context.Context, text string) error {
	payload := map[string]any{
		"text": text,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/speak")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("speech gateway error: status=%d", resp.StatusCode())
	}

	return nil
}
