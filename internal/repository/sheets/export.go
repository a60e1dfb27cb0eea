package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/dbarry-dev/stationtrack/internal/config"
	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

const exportRange = "Registry!A:E"

// Exporter mirrors the registry into an external spreadsheet for people
// who review stock from a browser rather than the dashboard.
type Exporter interface {
	ExportRegistry(ctx context.Context, records []models.ItemRecord) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.ExportConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportRegistry rewrites the export range with the full registry table,
// header row first, matching the CSV column order.
func (e *GoogleSheetExporter) ExportRegistry(ctx context.Context, records []models.ItemRecord) error {
	values := make([][]interface{}, 0, len(records)+1)

	header := make([]interface{}, len(models.Header))
	for i, col := range models.Header {
		header[i] = col
	}
	values = append(values, header)

	for _, record := range records {
		row := record.Row()
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	clearCall := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, exportRange, &sheetsapi.ClearValuesRequest{}).Context(ctx)
	if _, err := clearCall.Do(); err != nil {
		return fmt.Errorf("clear export range %s: %w", exportRange, err)
	}

	payload := &sheetsapi.ValueRange{Values: values}
	updateCall := e.service.Spreadsheets.Values.Update(e.spreadsheetID, exportRange, payload).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := updateCall.Do(); err != nil {
		return fmt.Errorf("update export range %s: %w", exportRange, err)
	}

	e.logger.Debug("registry exported to sheet", zap.Int("rows", len(records)))
	return nil
}
