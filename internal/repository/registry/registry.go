package registry

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

// Store defines the persistence operations supported by the item registry.
type Store interface {
	Load(ctx context.Context) ([]models.ItemRecord, error)
	Save(ctx context.Context, records []models.ItemRecord) error
	Add(ctx context.Context, itemID, itemType, text, location string) (models.ItemRecord, bool, error)
	Search(ctx context.Context, substr string) ([]models.ItemRecord, error)
}

// CSVStore implements Store over a single delimited file with the fixed
// five-column schema. Writes replace the whole file through a temp-file
// rename, so a crashed save never leaves a truncated registry behind.
// An in-process mutex serializes Add's read-modify-write; concurrent
// processes remain last-writer-wins.
type CSVStore struct {
	path            string
	defaultLocation string
	logger          *zap.Logger
	now             func() time.Time

	mu sync.Mutex
}

// NewCSVStore builds a file-backed registry store.
func NewCSVStore(path, defaultLocation string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{
		path:            path,
		defaultLocation: defaultLocation,
		logger:          logger,
		now:             time.Now,
	}
}

// Load returns every record in the registry. A missing or empty backing
// file is initialized with the header row and yields zero records.
func (s *CSVStore) Load(ctx context.Context) ([]models.ItemRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("bootstrap registry %s: %w", s.path, err)
		}
		return []models.ItemRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat registry %s: %w", s.path, err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", s.path, err)
	}

	records := make([]models.ItemRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			// Header row.
			continue
		}
		records = append(records, models.ItemFromRow(row))
	}

	return records, nil
}

// Save overwrites the backing file with the given records, header first.
func (s *CSVStore) Save(ctx context.Context, records []models.ItemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeAll(records)
}

// Add registers a new item stamped with the current time. When the ID is
// already present the call is a no-op and the second return value is false;
// the existing record wins.
func (s *CSVStore) Add(ctx context.Context, itemID, itemType, text, location string) (models.ItemRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load(ctx)
	if err != nil {
		return models.ItemRecord{}, false, err
	}

	for _, existing := range records {
		if existing.ItemID == itemID {
			s.logger.Info("item already exists, skipping save", zap.String("item_id", itemID))
			return existing, false, nil
		}
	}

	if location == "" {
		location = s.defaultLocation
	}

	record := models.NewItemRecord(itemID, itemType, text, location, s.now())
	records = append(records, record)

	if err := s.writeAll(records); err != nil {
		return models.ItemRecord{}, false, err
	}

	s.logger.Info("added item",
		zap.String("item_id", record.ItemID),
		zap.String("type", record.Type),
		zap.String("timestamp", record.Timestamp))

	return record, true, nil
}

// Search returns the records whose Item_ID contains substr, preserving
// registry order. Matching is case-sensitive and unanchored; an empty
// substr matches everything.
func (s *CSVStore) Search(ctx context.Context, substr string) ([]models.ItemRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]models.ItemRecord, 0, len(records))
	for _, record := range records {
		if strings.Contains(record.ItemID, substr) {
			matches = append(matches, record)
		}
	}

	return matches, nil
}

func (s *CSVStore) writeAll(records []models.ItemRecord) error {
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".registry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp registry file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(models.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write registry header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			tmp.Close()
			return fmt.Errorf("write registry row %s: %w", record.ItemID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush registry rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close registry file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace registry %s: %w", s.path, err)
	}

	return nil
}
