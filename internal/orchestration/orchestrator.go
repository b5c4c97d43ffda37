package orchestration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/logging"
)

var tracer = otel.Tracer("github.com/agbru/dcafit/internal/orchestration")

// FailurePolicy decides what FitAll does when one family fails.
type FailurePolicy int

const (
	// AbortOnFailure makes FitAll return the first failure, in family
	// order, and no report.
	AbortOnFailure FailurePolicy = iota
	// ContinueOnFailure keeps the successful fits, records the failures in
	// the report and fills the failed curve columns with NaN.
	ContinueOnFailure
)

// String returns the policy's flag spelling.
func (p FailurePolicy) String() string {
	switch p {
	case AbortOnFailure:
		return "abort"
	case ContinueOnFailure:
		return "continue"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy accepts "abort" or "continue", case-insensitively.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return AbortOnFailure, nil
	case "continue":
		return ContinueOnFailure, nil
	default:
		return AbortOnFailure, apperrors.NewConfigError("invalid failure policy %q: choose abort or continue", s)
	}
}

// FamilyFitter fits one family to one series. decline.Fitter is the
// production implementation.
type FamilyFitter interface {
	Fit(family decline.Family, s decline.Series) (decline.FitResult, error)
}

// Options configures FitAll and FitFamily. The zero value fits with the
// default optimizer budget, aborts on the first failure and logs nothing.
type Options struct {
	Fitter   FamilyFitter
	Policy   FailurePolicy
	Observer FitObserver
	Logger   logging.Logger
}

func (o Options) withDefaults() Options {
	if o.Fitter == nil {
		o.Fitter = decline.Fitter{}
	}
	if o.Observer == nil {
		o.Observer = NullFitObserver{}
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	return o
}

// FitFamily fits a single family, notifying the observer and recording a
// span around the fit. It returns ctx's error without fitting when ctx is
// already done.
func FitFamily(ctx context.Context, family decline.Family, s decline.Series, opts Options) (decline.FitResult, error) {
	opts = opts.withDefaults()
	if err := ctx.Err(); err != nil {
		return decline.FitResult{}, err
	}

	_, span := tracer.Start(ctx, "decline.Fit", trace.WithAttributes(
		attribute.String("dca.model", family.String()),
		attribute.Int("dca.points", s.Len()),
	))
	defer span.End()

	opts.Observer.FitStarted(family)
	start := time.Now()
	res, err := opts.Fitter.Fit(family, s)
	elapsed := time.Since(start)
	opts.Observer.FitFinished(family, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		opts.Logger.Error("fit failed", err,
			logging.String("model", family.String()),
			logging.Duration("duration", elapsed))
		return decline.FitResult{}, err
	}

	span.SetAttributes(
		attribute.Float64("dca.rmse", res.RMSE),
		attribute.Int("dca.evaluations", res.Evaluations),
	)
	opts.Logger.Debug("fit finished",
		logging.String("model", family.String()),
		logging.Float64("rmse", res.RMSE),
		logging.Int("evaluations", res.Evaluations),
		logging.Duration("duration", elapsed))
	return res, nil
}

// FitAll fits every decline family to s concurrently and aggregates the
// outcome. Results and parameter rows always follow decline.Families()
// order regardless of which fit finishes first.
//
// The series is validated once up front, so an unusable series yields a
// single DomainError instead of one per family. Under AbortOnFailure the
// returned error is the failure of the earliest family in that order.
func FitAll(ctx context.Context, s decline.Series, opts Options) (ComparisonReport, error) {
	opts = opts.withDefaults()
	if err := s.Validate(); err != nil {
		return ComparisonReport{}, err
	}

	ctx, span := tracer.Start(ctx, "orchestration.FitAll", trace.WithAttributes(
		attribute.Int("dca.points", s.Len()),
		attribute.String("dca.policy", opts.Policy.String()),
	))
	defer span.End()

	families := decline.Families()
	results := make([]decline.FitResult, len(families))
	errs := make([]error, len(families))

	g, gctx := errgroup.WithContext(ctx)
	for i, family := range families {
		g.Go(func() error {
			results[i], errs[i] = FitFamily(gctx, family, s, opts)
			if errs[i] != nil && opts.Policy == AbortOnFailure {
				return errs[i]
			}
			return nil
		})
	}
	// Per-family errors are read from errs so the reported one does not
	// depend on scheduling.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ComparisonReport{}, err
	}

	if opts.Policy == AbortOnFailure {
		if err := firstFailure(errs); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ComparisonReport{}, err
		}
	}

	var (
		fitted   []decline.FitResult
		failures []FamilyFailure
	)
	for i, family := range families {
		if errs[i] != nil {
			failures = append(failures, FamilyFailure{Family: family, Model: family.String(), Err: errs[i]})
			continue
		}
		fitted = append(fitted, results[i])
	}
	report := NewReport(s, fitted, failures)

	opts.Logger.Info("comparison finished",
		logging.Int("fitted", len(report.Results)),
		logging.Int("failed", len(report.Failures)))
	return report, nil
}

// firstFailure returns the earliest fit error in family order, skipping
// the cancellations the errgroup caused in families that never started.
func firstFailure(errs []error) error {
	for _, err := range errs {
		if err != nil && !apperrors.IsContextError(err) {
			return err
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// FitOne fits a single family and wraps the outcome in a one-row report,
// so single-model runs share the comparison's presentation. Under
// ContinueOnFailure a fit error is recorded as a failure of the report
// instead of being returned; context errors are always returned.
func FitOne(ctx context.Context, family decline.Family, s decline.Series, opts Options) (ComparisonReport, error) {
	opts = opts.withDefaults()
	res, err := FitFamily(ctx, family, s, opts)
	if err != nil {
		if opts.Policy == AbortOnFailure || apperrors.IsContextError(err) {
			return ComparisonReport{}, err
		}
		return NewReport(s, nil, []FamilyFailure{{Family: family, Model: family.String(), Err: err}}), nil
	}
	return NewReport(s, []decline.FitResult{res}, nil), nil
}
