package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dbarry-dev/stationtrack/internal/config"
	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

// ErrStreamEnded is returned by Frame when the gateway reports that the
// camera stream has been closed or never produced a frame.
var ErrStreamEnded = errors.New("camera stream ended")

// Client exposes the vision gateway operations used by the application:
// camera frames, code decoding, operator overlay and OCR.
type Client interface {
	Frame(ctx context.Context) (models.Frame, error)
	Decode(ctx context.Context, frame models.Frame) ([]models.Detection, error)
	SubmitOverlay(ctx context.Context, frame models.Frame, detections []models.Detection) error
	StopRequested(ctx context.Context) bool
	ExtractText(ctx context.Context, image []byte, grayscale bool) (string, error)
	ReleaseCamera(ctx context.Context) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a vision gateway client using the provided configuration.
func NewClient(cfg config.VisionConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// apiError represents a vision gateway error payload.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type decodeResponse struct {
	Detections []models.Detection `json:"detections"`
}

type controlsResponse struct {
	Stop bool `json:"stop"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// Frame fetches the next camera frame as encoded image bytes.
func (c *APIClient) Frame(ctx context.Context) (models.Frame, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/camera/frame")
	if err != nil {
		return models.Frame{}, fmt.Errorf("fetch camera frame: %w", err)
	}

	if resp.StatusCode() == http.StatusGone || resp.StatusCode() == http.StatusNotFound {
		return models.Frame{}, ErrStreamEnded
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return models.Frame{}, fmt.Errorf("vision gateway error: status=%d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return models.Frame{}, ErrStreamEnded
	}

	return models.Frame{
		Data:       body,
		MediaType:  resp.Header().Get("Content-Type"),
		CapturedAt: time.Now(),
	}, nil
}

// Decode submits a frame for barcode/QR decoding.
func (c *APIClient) Decode(ctx context.Context, frame models.Frame) ([]models.Detection, error) {
	result := new(decodeResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType(frame)).
		SetBody(frame.Data).
		SetResult(result).
		SetError(apiErr).
		Post("/decode")
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("vision gateway error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	return result.Detections, nil
}

// SubmitOverlay sends detection outlines and labels back to the gateway so
// the operator-facing preview can annotate the live feed.
func (c *APIClient) SubmitOverlay(ctx context.Context, frame models.Frame, detections []models.Detection) error {
	payload := map[string]any{
		"detections": detections,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/overlay")
	if err != nil {
		return fmt.Errorf("submit overlay: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("vision gateway error: status=%d", resp.StatusCode())
	}

	return nil
}

// StopRequested polls the gateway for an operator stop signal. Transport
// failures read as "no stop requested" so a flaky poll cannot end a session.
func (c *APIClient) StopRequested(ctx context.Context) bool {
	result := new(controlsResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get("/controls/stop")
	if err != nil || resp.StatusCode() >= http.StatusBadRequest {
		return false
	}

	return result.Stop
}

// ExtractText runs OCR over the provided image bytes.
func (c *APIClient) ExtractText(ctx context.Context, image []byte, grayscale bool) (string, error) {
	result := new(ocrResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetQueryParam("grayscale", fmt.Sprintf("%t", grayscale)).
		SetBody(image).
		SetResult(result).
		SetError(apiErr).
		Post("/ocr")
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("vision gateway error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	return result.Text, nil
}

// ReleaseCamera tells the gateway to release the capture device.
func (c *APIClient) ReleaseCamera(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Post("/camera/release")
	if err != nil {
		return fmt.Errorf("release camera: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("vision gateway error: status=%d", resp.StatusCode())
	}

	return nil
}

func contentType(frame models.Frame) string {
	if frame.MediaType != "" {
		return frame.MediaType
	}
	return "image/jpeg"
}
