package alert

import (
	"fmt"
	"sync"
	"time"

	"PairScope/internal/domain/models"
	"PairScope/internal/domain/repository"
	"PairScope/pkg/logger"
)

// Predicate decides whether an alert fires for the supplied series.
// Predicates must be pure and must not mutate their input.
type Predicate func(data []float64) bool

// Alert is one registered predicate. Names are lookup keys but uniqueness
// is not enforced: duplicates are legal and all of them get evaluated.
type Alert struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"` // empty matches every symbol
	Active bool   `json:"active"`

	predicate Predicate
}

// Engine owns the alert registry and the append-only trigger history.
// All mutation is mutex guarded; predicates run under the lock, which is
// fine because they are pure in-memory checks.
type Engine struct {
	mu      sync.Mutex
	alerts  []*Alert
	history []models.TriggeredAlert
	log     *logger.Logger
	metrics repository.Metrics
	now     func() time.Time
}

func New(log *logger.Logger, m repository.Metrics) *Engine {
	return &Engine{log: log, metrics: m, now: time.Now}
}

// Register appends a new alert in active state. Symbol may be empty.
func (e *Engine) Register(name string, p Predicate, symbol string) {
	e.mu.Lock()
	e.alerts = append(e.alerts, &Alert{Name: name, Symbol: symbol, Active: true, predicate: p})
	e.mu.Unlock()
}

// Unregister removes every alert with the given name and reports how
// many were removed.
func (e *Engine) Unregister(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.alerts[:0]
	for _, a := range e.alerts {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	removed := len(e.alerts) - len(kept)
	e.alerts = kept
	return removed
}

// SetActive flips the active flag of the first alert matching name.
// Returns false when nothing matches.
func (e *Engine) SetActive(name string, active bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range e.alerts {
		if a.Name == name {
			a.Active = active
			return true
		}
	}
	return false
}

// Evaluate runs every active alert whose symbol filter is absent or
// matches the supplied symbol. A failing predicate is logged and treated
// as not-triggered; it never aborts evaluation of the remaining alerts.
// Each trigger is appended to history and returned.
func (e *Engine) Evaluate(data []float64, symbol string) []models.TriggeredAlert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var triggered []models.TriggeredAlert
	for _, a := range e.alerts {
		if !a.Active {
			continue
		}
		if a.Symbol != "" && symbol != "" && a.Symbol != symbol {
			continue
		}

		fired, err := e.check(a, data)
		if err != nil {
			if e.log != nil {
				e.log.Error("alert predicate failed", logger.String("alert", a.Name), logger.Error(err))
			}
			if e.metrics != nil {
				e.metrics.RecordError("alert_predicate")
			}
			continue
		}
		if !fired {
			continue
		}

		sym := symbol
		if sym == "" {
			sym = a.Symbol
		}
		ta := models.TriggeredAlert{Name: a.Name, Symbol: sym, Timestamp: e.now()}
		e.history = append(e.history, ta)
		triggered = append(triggered, ta)
		if e.metrics != nil {
			e.metrics.RecordAlertTriggered(a.Name)
		}
	}
	return triggered
}

// check isolates a single predicate call, converting panics to errors.
func (e *Engine) check(a *Alert, data []float64) (fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			fired, err = false, fmt.Errorf("predicate panic: %v", r)
		}
	}()
	if a.predicate == nil {
		return false, fmt.Errorf("nil predicate")
	}
	return a.predicate(data), nil
}

// ListActive returns a snapshot of the currently active alerts.
func (e *Engine) ListActive() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alert, 0, len(e.alerts))
	for _, a := range e.alerts {
		if a.Active {
			out = append(out, *a)
		}
	}
	return out
}

// History returns a snapshot of every trigger since construction.
// History is never pruned.
func (e *Engine) History() []models.TriggeredAlert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.TriggeredAlert, len(e.history))
	copy(out, e.history)
	return out
}
