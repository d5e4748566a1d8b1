package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cafeteria/internal/logger"
	"cafeteria/internal/models"
)

// ErrSuperseded is returned by Load when a newer load finished first
var ErrSuperseded = errors.New("menu load superseded by a newer request")

// Fetcher reads the two menu sources from the backend
type Fetcher interface {
	Menu(ctx context.Context) (models.Catalog, error)
	ModuleMenu(ctx context.Context, weekStart models.Date) (models.WeekSchedule, error)
}

// Snapshot is one applied menu load
type Snapshot struct {
	Generation uint64
	WeekStart  models.Date
	Catalog    models.Catalog
	Schedule   models.WeekSchedule
	LoadedAt   time.Time
}

// View returns the renderable days of the snapshot
func (s *Snapshot) View() []DayMenu {
	return BuildView(s.Catalog, s.Schedule)
}

// Loader fetches catalog and schedule in parallel and applies only the
// newest completed load
type Loader struct {
	fetcher Fetcher
	logger  *logger.Logger

	generation atomic.Uint64

	mu      sync.Mutex
	applied uint64
	current *Snapshot
}

func NewLoader(fetcher Fetcher, log *logger.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		logger:  log,
	}
}

// Load fetches the menu for weekStart. If a load started later has already
// been applied, the result is discarded and ErrSuperseded returned.
func (l *Loader) Load(ctx context.Context, weekStart models.Date) (*Snapshot, error) {
	gen := l.generation.Add(1)
	requestID := logger.GenerateRequestID()

	var (
		catalog  models.Catalog
		schedule models.WeekSchedule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := l.fetcher.Menu(gctx)
		if err != nil {
			return fmt.Errorf("failed to load dish catalog: %w", err)
		}
		catalog = c
		return nil
	})
	g.Go(func() error {
		s, err := l.fetcher.ModuleMenu(gctx, weekStart)
		if err != nil {
			return fmt.Errorf("failed to load week schedule: %w", err)
		}
		schedule = s
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("menu_load_failed", "Menu load failed", requestID, err, map[string]interface{}{
			"generation": gen,
			"week_start": weekStart.String(),
		})
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen < l.applied {
		l.logger.Debug("menu_load_superseded", "Discarding stale menu load", requestID, map[string]interface{}{
			"generation": gen,
			"applied":    l.applied,
		})
		return nil, ErrSuperseded
	}

	snap := &Snapshot{
		Generation: gen,
		WeekStart:  weekStart,
		Catalog:    catalog,
		Schedule:   schedule,
		LoadedAt:   time.Now().UTC(),
	}
	l.applied = gen
	l.current = snap

	l.logger.Debug("menu_loaded", "Menu loaded", requestID, map[string]interface{}{
		"generation": gen,
		"week_start": weekStart.String(),
		"dishes":     len(catalog),
		"days":       len(schedule.Entries()),
	})
	return snap, nil
}

// Current returns the last applied snapshot, or nil
func (l *Loader) Current() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}
