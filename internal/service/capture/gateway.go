package capture

import (
	"context"
	"errors"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
	"github.com/dbarry-dev/stationtrack/pkg/clients/vision"
)

// GatewayFeed adapts the vision gateway client to the session interfaces:
// it is the frame source, the decoder and the presenter of a live run.
type GatewayFeed struct {
	client vision.Client
}

// NewGatewayFeed wraps a vision gateway client.
func NewGatewayFeed(client vision.Client) *GatewayFeed {
	return &GatewayFeed{client: client}
}

// Next fetches the next camera frame, mapping an ended stream to
// ErrSourceClosed so the session terminates cleanly.
func (g *GatewayFeed) Next(ctx context.Context) (models.Frame, error) {
	frame, err := g.client.Frame(ctx)
	if err != nil {
		if errors.Is(err, vision.ErrStreamEnded) {
			return models.Frame{}, ErrSourceClosed
		}
		return models.Frame{}, err
	}
	return frame, nil
}

// Close releases the gateway's capture device.
func (g *GatewayFeed) Close() error {
	return g.client.ReleaseCamera(context.Background())
}

// Decode runs the gateway decoder over the frame. Detections with empty
// polygons are passed through untouched; the overlay side tolerates them.
func (g *GatewayFeed) Decode(ctx context.Context, frame models.Frame) ([]models.Detection, error) {
	return g.client.Decode(ctx, frame)
}

// Render submits overlay annotations for the operator preview, dropping
// malformed detections with no polygon points rather than failing the frame.
func (g *GatewayFeed) Render(ctx context.Context, frame models.Frame, detections []models.Detection) error {
	drawable := make([]models.Detection, 0, len(detections))
	for _, det := range detections {
		if len(det.Polygon) == 0 {
			continue
		}
		drawable = append(drawable, det)
	}

	if len(drawable) == 0 {
		return nil
	}

	return g.client.SubmitOverlay(ctx, frame, drawable)
}

// StopRequested polls the gateway for the operator stop signal.
func (g *GatewayFeed) StopRequested(ctx context.Context) bool {
	return g.client.StopRequested(ctx)
}
