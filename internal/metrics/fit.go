package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
)

// Fit outcome labels.
const (
	StatusSuccess      = "success"
	StatusInvalidModel = "invalid_model"
	StatusDomain       = "domain_error"
	StatusConvergence  = "no_convergence"
	StatusCanceled     = "canceled"
	StatusError        = "error"
)

// FitRecorder holds the fit metrics. It satisfies orchestration.FitObserver
// and is safe for concurrent use.
type FitRecorder struct {
	registry *prometheus.Registry

	FitsTotal   *prometheus.CounterVec
	FitDuration *prometheus.HistogramVec
	InFlight    prometheus.Gauge
}

// NewFitRecorder creates a recorder with its own registry, so several
// recorders can coexist in one process. Go runtime metrics are included
// when withRuntime is set.
func NewFitRecorder(withRuntime bool) *FitRecorder {
	r := &FitRecorder{
		registry: prometheus.NewRegistry(),
		FitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcafit_fits_total",
				Help: "Total number of decline fits by model and outcome",
			},
			[]string{"model", "status"},
		),
		FitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dcafit_fit_duration_seconds",
				Help:    "Wall-clock duration of one decline fit in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"model"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dcafit_fits_in_flight",
				Help: "Number of decline fits currently running",
			},
		),
	}
	r.registry.MustRegister(r.FitsTotal, r.FitDuration, r.InFlight)
	if withRuntime {
		r.registry.MustRegister(collectors.NewGoCollector())
	}
	return r
}

// FitStarted marks a fit as running.
func (r *FitRecorder) FitStarted(decline.Family) {
	r.InFlight.Inc()
}

// FitFinished records the outcome and duration of a fit.
func (r *FitRecorder) FitFinished(family decline.Family, duration time.Duration, err error) {
	r.InFlight.Dec()
	r.FitsTotal.WithLabelValues(family.String(), Status(err)).Inc()
	r.FitDuration.WithLabelValues(family.String()).Observe(duration.Seconds())
}

// Gatherer exposes the recorder's registry.
func (r *FitRecorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (r *FitRecorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return apperrors.WrapError(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return apperrors.WrapError(err, "writing metric %s", mf.GetName())
		}
	}
	return nil
}

// Status maps a fit error to its outcome label.
func Status(err error) string {
	var (
		modelErr  apperrors.InvalidModelError
		domainErr apperrors.DomainError
		convErr   apperrors.FitConvergenceError
	)
	switch {
	case err == nil:
		return StatusSuccess
	case errors.As(err, &modelErr):
		return StatusInvalidModel
	case errors.As(err, &domainErr):
		return StatusDomain
	case errors.As(err, &convErr):
		return StatusConvergence
	case apperrors.IsContextError(err):
		return StatusCanceled
	default:
		return StatusError
	}
}
