package timewindow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/angas/tibberwatch-go/convert"
	"github.com/angas/tibberwatch-go/coordinator"
	"github.com/angas/tibberwatch-go/database"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Window is a user-registered recurring consumer, e.g. a dishwasher
// run or an EV charging session, for which the cheapest upcoming slot
// is computed on demand.
type Window struct {
	Name          string   `json:"name"`
	DurationHours float64  `json:"duration_hours"`
	PowerKw       *float64 `json:"power_kw,omitempty"`
}

func (w Window) validate() error {
	if !nameRe.MatchString(w.Name) {
		return fmt.Errorf("invalid window name %q, use letters, digits, _ or -", w.Name)
	}
	if w.DurationHours < 0.5 || w.DurationHours > 24 {
		return fmt.Errorf("window %q: duration must be between 0.5 and 24 hours", w.Name)
	}
	if w.PowerKw != nil && *w.PowerKw <= 0 {
		return fmt.Errorf("window %q: power must be positive", w.Name)
	}
	return nil
}

// Computed is a window together with its current cheapest placement.
type Computed struct {
	Window
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	AveragePrice float64   `json:"average_price"`
	TotalCost    *float64  `json:"total_cost,omitempty"`
}

// Computer is the slice of the coordinator the manager depends on.
type Computer interface {
	BestWindowFor(req coordinator.BestWindowRequest) (*coordinator.BestWindowResult, error)
}

// Manager is the registry of named windows, persisted in sqlite and
// mirrored in memory for reads.
type Manager struct {
	logger   *slog.Logger
	db       *database.Database
	computer Computer

	mu      sync.RWMutex
	windows map[string]Window
}

func NewManager(ctx context.Context, logger *slog.Logger, db *database.Database, computer Computer) (*Manager, error) {
	rows, err := db.GetTimeWindows(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading time windows: %w", err)
	}

	windows := make(map[string]Window, len(rows))
	for _, r := range rows {
		windows[r.Name] = Window{Name: r.Name, DurationHours: r.DurationHours, PowerKw: r.PowerKw}
	}

	return &Manager{
		logger:   logger,
		db:       db,
		computer: computer,
		windows:  windows,
	}, nil
}

// Add registers or replaces a window. Re-adding an existing name is an
// update, not an error.
func (m *Manager) Add(ctx context.Context, w Window) error {
	if err := w.validate(); err != nil {
		return err
	}

	row := database.TimeWindowRow{Name: w.Name, DurationHours: w.DurationHours, PowerKw: w.PowerKw}
	if err := m.db.SaveTimeWindow(ctx, row); err != nil {
		return err
	}

	m.mu.Lock()
	m.windows[w.Name] = w
	m.mu.Unlock()

	m.logger.Info("time window registered",
		slog.String("name", w.Name), slog.Float64("durationHours", w.DurationHours))
	return nil
}

// Remove deletes a window. Removing an unknown name is a no-op.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if err := m.db.DeleteTimeWindow(ctx, name); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.windows, name)
	m.mu.Unlock()

	m.logger.Info("time window removed", slog.String("name", name))
	return nil
}

func (m *Manager) Get(name string) (Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[name]
	return w, ok
}

func (m *Manager) All() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	windows := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Name < windows[j].Name })
	return windows
}

// Compute finds the cheapest placement for one window over today and
// tomorrow. Fractional durations search on whole hours but cost with
// the exact duration.
func (m *Manager) Compute(name, homeID string) (*Computed, error) {
	w, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("no time window named %q", name)
	}
	return m.compute(w, homeID)
}

// ComputeAll computes every registered window, skipping ones that fail
// with a log entry rather than aborting the rest.
func (m *Manager) ComputeAll(homeID string) []Computed {
	windows := m.All()
	computed := make([]Computed, 0, len(windows))
	for _, w := range windows {
		c, err := m.compute(w, homeID)
		if err != nil {
			m.logger.Warn("computing time window",
				slog.String("name", w.Name), slog.Any("error", err))
			continue
		}
		computed = append(computed, *c)
	}
	return computed
}

func (m *Manager) compute(w Window, homeID string) (*Computed, error) {
	result, err := m.computer.BestWindowFor(coordinator.BestWindowRequest{
		HomeID:          homeID,
		DurationHours:   int(math.Ceil(w.DurationHours)),
		IncludeTomorrow: true,
	})
	if err != nil {
		return nil, err
	}

	c := &Computed{
		Window:       w,
		WindowStart:  result.BestStartTime,
		WindowEnd:    result.BestEndTime,
		AveragePrice: result.AveragePriceWindow,
	}
	if w.PowerKw != nil {
		cost := convert.FourDecimals(w.DurationHours * *w.PowerKw * result.AveragePriceWindow)
		c.TotalCost = &cost
	}
	return c, nil
}
