//go:generate mockgen -source=interfaces.go -destination=mocks/mock_observer.go -package=mocks

package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/dcafit/internal/decline"
)

// FitObserver is notified around every per-family fit. Implementations
// must be safe for concurrent use: FitAll fits the families in parallel.
//
// This interface decouples the orchestration layer from progress display,
// metrics and logging, which live in their own packages.
type FitObserver interface {
	// FitStarted is called before a family is fitted.
	FitStarted(family decline.Family)
	// FitFinished is called after a family is fitted, with the fit's
	// wall-clock duration and its error, if any.
	FitFinished(family decline.Family, duration time.Duration, err error)
}

// NullFitObserver is a no-op implementation of FitObserver.
type NullFitObserver struct{}

// FitStarted does nothing.
func (NullFitObserver) FitStarted(decline.Family) {}

// FitFinished does nothing.
func (NullFitObserver) FitFinished(decline.Family, time.Duration, error) {}

// FitObservers fans every notification out to each observer in order.
type FitObservers []FitObserver

// FitStarted notifies every observer.
func (o FitObservers) FitStarted(family decline.Family) {
	for _, obs := range o {
		obs.FitStarted(family)
	}
}

// FitFinished notifies every observer.
func (o FitObservers) FitFinished(family decline.Family, duration time.Duration, err error) {
	for _, obs := range o {
		obs.FitFinished(family, duration, err)
	}
}

// CountingObserver counts finished fits. It is mainly useful in tests and
// for quiet progress accounting.
type CountingObserver struct {
	mu        sync.Mutex
	started   int
	succeeded int
	failed    int
}

// FitStarted records a started fit.
func (c *CountingObserver) FitStarted(decline.Family) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

// FitFinished records a finished fit.
func (c *CountingObserver) FitFinished(_ decline.Family, _ time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failed++
		return
	}
	c.succeeded++
}

// Counts returns the number of started, succeeded and failed fits.
func (c *CountingObserver) Counts() (started, succeeded, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, c.succeeded, c.failed
}

// ResultPresenter defines the interface for presenting a comparison.
// This interface decouples the orchestration layer from presentation
// concerns, allowing different output formats (styled table, JSON, YAML,
// CSV) without modifying the orchestration logic.
type ResultPresenter interface {
	// PresentComparison renders the parameter table and curves.
	PresentComparison(report ComparisonReport, out io.Writer) error
}

// ErrorHandler handles fit errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, out io.Writer) int
}
