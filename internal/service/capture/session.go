package capture

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
	"github.com/dbarry-dev/stationtrack/internal/repository/mongodb"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
)

// ErrSourceClosed signals that the frame source has no more frames. Sources
// return it (or any other error) from Next to end the session cleanly.
var ErrSourceClosed = errors.New("frame source closed")

// FrameSource yields frames from a live feed. Next blocks until a frame is
// available or the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (models.Frame, error)
	Close() error
}

// Decoder extracts machine-readable codes from a single frame.
type Decoder interface {
	Decode(ctx context.Context, frame models.Frame) ([]models.Detection, error)
}

// Presenter feeds annotated detections back to the operator and surfaces
// the operator's stop request, checked once per frame.
type Presenter interface {
	Render(ctx context.Context, frame models.Frame, detections []models.Detection) error
	StopRequested(ctx context.Context) bool
}

// Session drives one capture run: frames in, first-time detections into
// the registry, every detection back out as overlay feedback. The scanned
// set lives for the duration of the run only.
type Session struct {
	source  FrameSource
	decoder Decoder
	present Presenter
	store   registry.Store
	archive mongodb.Archive
	station string
	logger  *zap.Logger
	now     func() time.Time
}

// NewSession wires a capture session. The archive may be nil, in which case
// sightings are not recorded.
func NewSession(source FrameSource, decoder Decoder, present Presenter, store registry.Store, archive mongodb.Archive, station string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		source:  source,
		decoder: decoder,
		present: present,
		store:   store,
		archive: archive,
		station: station,
		logger:  logger,
		now:     time.Now,
	}
}

// Run loops over frames until the operator requests a stop, the context is
// cancelled, or the source stops yielding frames. The frame source is
// released on every exit path.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		if err := s.source.Close(); err != nil {
			s.logger.Warn("failed to release frame source", zap.Error(err))
		}
	}()

	s.logger.Info("capture session started", zap.String("station", s.station))
	scanned := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("capture session cancelled")
			return nil
		}

		frame, err := s.source.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrSourceClosed) || errors.Is(err, context.Canceled) {
				s.logger.Info("frame source exhausted, ending session")
				return nil
			}
			s.logger.Warn("frame read failed, ending session", zap.Error(err))
			return nil
		}

		detections, err := s.decoder.Decode(ctx, frame)
		if err != nil {
			s.logger.Warn("frame decode failed, skipping frame", zap.Error(err))
			continue
		}

		for _, det := range detections {
			s.recordSighting(ctx, det)

			if _, seen := scanned[det.Value]; seen {
				continue
			}

			if _, added, err := s.store.Add(ctx, det.Value, det.Symbology, "", s.station); err != nil {
				s.logger.Error("failed to register item", zap.String("item_id", det.Value), zap.Error(err))
				continue
			} else if !added {
				s.logger.Debug("item already registered", zap.String("item_id", det.Value))
			}

			scanned[det.Value] = struct{}{}
		}

		if err := s.present.Render(ctx, frame, detections); err != nil {
			s.logger.Warn("overlay render failed", zap.Error(err))
		}

		if s.present.StopRequested(ctx) {
			s.logger.Info("stop requested by operator")
			return nil
		}
	}
}

func (s *Session) recordSighting(ctx context.Context, det models.Detection) {
	if s.archive == nil {
		return
	}

	sighting := models.Sighting{
		ItemID:     det.Value,
		Symbology:  det.Symbology,
		Station:    s.station,
		ObservedAt: s.now(),
	}

	if err := s.archive.RecordSighting(ctx, sighting); err != nil {
		s.logger.Warn("failed to archive sighting", zap.String("item_id", det.Value), zap.Error(err))
	}
}
