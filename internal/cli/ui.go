package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/dcafit/internal/decline"
	"github.com/agbru/dcafit/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 24
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples FitProgress from a specific spinner implementation,
// facilitating easier testing.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// FitProgress shows a spinner with a progress bar while the decline
// families are fitted. It implements orchestration.FitObserver.
type FitProgress struct {
	mu      sync.Mutex
	spinner Spinner
	total   int
	done    int
	failed  int
}

var _ orchestration.FitObserver = (*FitProgress)(nil)

// NewFitProgress creates a progress display for total fits writing to out.
func NewFitProgress(total int, out io.Writer) *FitProgress {
	p := &FitProgress{
		spinner: newSpinner(spinner.WithWriter(out)),
		total:   total,
	}
	p.spinner.UpdateSuffix(p.suffix())
	return p
}

// Start begins the animation.
func (p *FitProgress) Start() { p.spinner.Start() }

// Stop halts the animation.
func (p *FitProgress) Stop() { p.spinner.Stop() }

// FitStarted is a no-op: only completions move the bar.
func (p *FitProgress) FitStarted(decline.Family) {}

// FitFinished advances the bar.
func (p *FitProgress) FitFinished(_ decline.Family, _ time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if err != nil {
		p.failed++
	}
	p.spinner.UpdateSuffix(p.suffix())
}

// suffix renders the bar; callers hold p.mu or own p exclusively.
func (p *FitProgress) suffix() string {
	frac := 0.0
	if p.total > 0 {
		frac = float64(p.done) / float64(p.total)
	}
	s := fmt.Sprintf(" Fitting decline models %s %d/%d", progressBar(frac, ProgressBarWidth), p.done, p.total)
	if p.failed > 0 {
		s += fmt.Sprintf(" (%d failed)", p.failed)
	}
	return s
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
