package extraction

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
)

// TextReader extracts text from encoded image bytes. The vision gateway
// client satisfies this.
type TextReader interface {
	ExtractText(ctx context.Context, image []byte, grayscale bool) (string, error)
}

// Extractor turns an image file into an OCR-sourced registry record.
type Extractor struct {
	reader  TextReader
	store   registry.Store
	station string
	logger  *zap.Logger
}

// NewExtractor wires an OCR extractor.
func NewExtractor(reader TextReader, store registry.Store, station string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		reader:  reader,
		store:   store,
		station: station,
		logger:  logger,
	}
}

// FromImage reads the image at path, extracts its text via the grayscale
// OCR pipeline and registers non-empty output as a new item. The cleaned
// text is returned either way. Unreadable paths and gateway failures
// propagate to the caller.
//
// The synthesized key is derived from the text length, so two extractions
// of equal length collide and the second is skipped as a duplicate. That
// matches the historical registry contents; changing the key scheme would
// strand existing records.
func (e *Extractor) FromImage(ctx context.Context, path string) (string, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}

	text, err := e.reader.ExtractText(ctx, image, true)
	if err != nil {
		return "", fmt.Errorf("ocr image %s: %w", path, err)
	}

	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		e.logger.Info("no text extracted", zap.String("path", path))
		return "", nil
	}

	itemID := fmt.Sprintf("text_%d", len(cleaned))
	if _, added, err := e.store.Add(ctx, itemID, models.TypeOCR, cleaned, e.station); err != nil {
		return "", fmt.Errorf("register ocr item %s: %w", itemID, err)
	} else if !added {
		e.logger.Info("ocr item collided with existing key", zap.String("item_id", itemID))
	}

	return cleaned, nil
}
