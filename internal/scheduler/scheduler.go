package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/config"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
	"github.com/dbarry-dev/stationtrack/internal/repository/sheets"
)

// Scheduler runs periodic registry maintenance: local snapshots of the
// backing file, plus a spreadsheet export when one is configured.
type Scheduler struct {
	cron     *cron.Cron
	store    registry.Store
	exporter sheets.Exporter
	cfg      config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. The exporter may be nil.
func NewScheduler(cfg config.Config, store registry.Store, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		store:    store,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the backup job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Backup.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Backup.CronSchedule, s.runBackup)
	if err != nil {
		s.logger.Error("failed to schedule registry backup", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.Snapshot(ctx); err != nil {
		s.logger.Error("registry snapshot failed", zap.Error(err))
	}

	if s.exporter == nil {
		return
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load registry for export", zap.Error(err))
		return
	}

	if err := s.exporter.ExportRegistry(ctx, records); err != nil {
		s.logger.Error("registry export failed", zap.Error(err))
		return
	}

	s.logger.Info("registry exported", zap.Int("rows", len(records)))
}

// Snapshot writes a timestamped copy of the registry into the backup
// directory. The copy goes through Load/Save, so it carries the header row
// even when the registry is empty.
func (s *Scheduler) Snapshot(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry for snapshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.Backup.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir %s: %w", s.cfg.Backup.Dir, err)
	}

	name := fmt.Sprintf("registry-%s.csv", s.now().Format("20060102-150405"))
	path := filepath.Join(s.cfg.Backup.Dir, name)

	snapshot := registry.NewCSVStore(path, s.cfg.Registry.StationLabel, s.logger.Named("snapshot"))
	if err := snapshot.Save(ctx, records); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	s.logger.Info("registry snapshot written", zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}
