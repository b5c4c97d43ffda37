package orchestration

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/orchestration/mocks"
)

// stubFitter delegates to the real fitter but can delay or fail chosen
// families, so scheduling order and partial failures are controllable.
type stubFitter struct {
	delay map[decline.Family]time.Duration
	fail  map[decline.Family]error
}

func (s stubFitter) Fit(family decline.Family, series decline.Series) (decline.FitResult, error) {
	time.Sleep(s.delay[family])
	if err := s.fail[family]; err != nil {
		return decline.FitResult{}, err
	}
	return decline.Fitter{}.Fit(family, series)
}

func exponentialSeries(n int) decline.Series {
	s := decline.Series{Time: make([]float64, n), Rate: make([]float64, n)}
	for i := range n {
		s.Time[i] = float64(i)
		s.Rate[i] = decline.ExponentialRate(float64(i), 100, 0.01)
	}
	return s
}

var errBoom = errors.New("boom")

// TestFitAll_FixedRowOrder verifies rows follow Exponential, Harmonic,
// Hyperbolic even when the exponential fit finishes last.
func TestFitAll_FixedRowOrder(t *testing.T) {
	t.Parallel()
	fitter := stubFitter{delay: map[decline.Family]time.Duration{
		decline.Exponential: 30 * time.Millisecond,
		decline.Harmonic:    10 * time.Millisecond,
	}}

	report, err := FitAll(context.Background(), exponentialSeries(100), Options{Fitter: fitter})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"exponential", "harmonic", "hyperbolic"}
	rows := report.ParameterTable()
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, row := range rows {
		if row.Model != want[i] {
			t.Errorf("row %d: expected %s, got %s", i, want[i], row.Model)
		}
		if row.RMSE < 0 || math.IsNaN(row.RMSE) {
			t.Errorf("row %d: invalid RMSE %v", i, row.RMSE)
		}
	}
	for i, res := range report.Results {
		if res.Family != decline.Families()[i] {
			t.Errorf("result %d: expected %v, got %v", i, decline.Families()[i], res.Family)
		}
	}
}

func TestFitAll_ReportContents(t *testing.T) {
	t.Parallel()
	series := exponentialSeries(100)

	report, err := FitAll(context.Background(), series, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := report.ParameterTable()[0]
	if math.Abs(exp.Qi-100)/100 > 0.01 || math.Abs(exp.Di-0.01)/0.01 > 0.01 {
		t.Errorf("exponential parameters not recovered: qi=%v di=%v", exp.Qi, exp.Di)
	}
	if exp.B != 0 {
		t.Errorf("exponential b: expected 0, got %v", exp.B)
	}
	if harm := report.ParameterTable()[1]; harm.B != 1 {
		t.Errorf("harmonic b: expected 1, got %v", harm.B)
	}

	if len(report.Curves) != series.Len() {
		t.Fatalf("expected %d curve rows, got %d", series.Len(), len(report.Curves))
	}
	for i, row := range report.Curves {
		if row.Time != series.Time[i] || row.Original != series.Rate[i] {
			t.Fatalf("curve row %d does not carry the input series", i)
		}
		if math.IsNaN(row.Exponential) || math.IsNaN(row.Harmonic) || math.IsNaN(row.Hyperbolic) {
			t.Fatalf("curve row %d has an unfitted column", i)
		}
	}

	best, ok := report.Best()
	if !ok || best.Family == decline.Harmonic {
		t.Errorf("harmonic cannot fit exponential data best, got %v", best.Family)
	}
	if len(report.Failures) != 0 {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
}

func TestFitAll_FailurePolicies(t *testing.T) {
	t.Parallel()
	fitter := stubFitter{fail: map[decline.Family]error{
		decline.Harmonic: apperrors.FitConvergenceError{Model: "harmonic", Evaluations: 600, Cause: errBoom},
	}}

	t.Run("abort", func(t *testing.T) {
		t.Parallel()
		report, err := FitAll(context.Background(), exponentialSeries(50), Options{Fitter: fitter})
		var convErr apperrors.FitConvergenceError
		if !errors.As(err, &convErr) || convErr.Model != "harmonic" {
			t.Fatalf("expected harmonic FitConvergenceError, got %v", err)
		}
		if len(report.Results) != 0 || len(report.Curves) != 0 {
			t.Errorf("expected no partial report, got %d results", len(report.Results))
		}
	})

	t.Run("continue", func(t *testing.T) {
		t.Parallel()
		report, err := FitAll(context.Background(), exponentialSeries(50), Options{Fitter: fitter, Policy: ContinueOnFailure})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rows := report.ParameterTable()
		if len(rows) != 2 || rows[0].Model != "exponential" || rows[1].Model != "hyperbolic" {
			t.Fatalf("unexpected rows: %+v", rows)
		}
		if len(report.Failures) != 1 || report.Failures[0].Family != decline.Harmonic {
			t.Fatalf("expected one harmonic failure, got %+v", report.Failures)
		}
		if !errors.Is(report.Failures[0].Err, errBoom) {
			t.Errorf("failure lost its cause: %v", report.Failures[0].Err)
		}
		for i, row := range report.Curves {
			if !math.IsNaN(row.Harmonic) {
				t.Fatalf("row %d: expected NaN harmonic column, got %v", i, row.Harmonic)
			}
			if math.IsNaN(row.Exponential) {
				t.Fatalf("row %d: exponential column missing", i)
			}
		}
		if _, ok := report.Result(decline.Harmonic); ok {
			t.Error("harmonic result should be absent")
		}
	})
}

// TestFitAll_AbortReportsEarliestFamily verifies that when several
// families fail, the reported error does not depend on which finished
// first.
func TestFitAll_AbortReportsEarliestFamily(t *testing.T) {
	t.Parallel()
	fitter := stubFitter{
		delay: map[decline.Family]time.Duration{decline.Exponential: 20 * time.Millisecond},
		fail: map[decline.Family]error{
			decline.Exponential: errors.New("exponential failed"),
			decline.Hyperbolic:  errors.New("hyperbolic failed"),
		},
	}

	_, err := FitAll(context.Background(), exponentialSeries(20), Options{Fitter: fitter})
	if err == nil || err.Error() != "exponential failed" {
		t.Fatalf("expected the exponential failure, got %v", err)
	}
}

func TestFitAll_DomainErrorOnce(t *testing.T) {
	t.Parallel()
	counter := &CountingObserver{}

	_, err := FitAll(context.Background(), decline.Series{}, Options{Observer: counter})
	var domainErr apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if started, _, _ := counter.Counts(); started != 0 {
		t.Errorf("expected no fit to start, got %d", started)
	}
}

func TestFitAll_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FitAll(ctx, exponentialSeries(20), Options{Policy: ContinueOnFailure})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFitAll_NotifiesObserver(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockFitObserver(ctrl)

	for _, family := range decline.Families() {
		observer.EXPECT().FitStarted(family).Times(1)
		observer.EXPECT().FitFinished(family, gomock.Any(), nil).Times(1)
	}

	if _, err := FitAll(context.Background(), exponentialSeries(30), Options{Observer: observer}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFitFamily(t *testing.T) {
	t.Parallel()
	counter := &CountingObserver{}
	opts := Options{Observer: FitObservers{NullFitObserver{}, counter}}

	res, err := FitFamily(context.Background(), decline.Hyperbolic, exponentialSeries(40), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Family != decline.Hyperbolic {
		t.Errorf("expected hyperbolic result, got %v", res.Family)
	}

	_, err = FitFamily(context.Background(), decline.Family(9), exponentialSeries(40), opts)
	var modelErr apperrors.InvalidModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected InvalidModelError, got %v", err)
	}

	started, succeeded, failed := counter.Counts()
	if started != 2 || succeeded != 1 || failed != 1 {
		t.Errorf("unexpected counts: started=%d succeeded=%d failed=%d", started, succeeded, failed)
	}
}

func TestParseFailurePolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    FailurePolicy
		wantErr bool
	}{
		{"abort", AbortOnFailure, false},
		{" Continue ", ContinueOnFailure, false},
		{"retry", AbortOnFailure, true},
	}
	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error state: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, got)
		}
	}
	if ContinueOnFailure.String() != "continue" {
		t.Errorf("unexpected policy name %q", ContinueOnFailure.String())
	}
}

// fakePresenter records the report it was given.
type fakePresenter struct {
	err    error
	called bool
}

func (p *fakePresenter) PresentComparison(ComparisonReport, io.Writer) error {
	p.called = true
	return p.err
}

type fixedHandler int

func (h fixedHandler) HandleError(error, io.Writer) int { return int(h) }

func TestAnalyzeComparison(t *testing.T) {
	t.Parallel()
	ok := ComparisonReport{Results: []decline.FitResult{{Family: decline.Exponential}}}
	failed := ComparisonReport{Failures: []FamilyFailure{{Family: decline.Harmonic, Err: errBoom}}}

	tests := []struct {
		name      string
		report    ComparisonReport
		presenter *fakePresenter
		want      int
	}{
		{"success", ok, &fakePresenter{}, apperrors.ExitSuccess},
		{"all failed", failed, &fakePresenter{}, apperrors.ExitErrorFit},
		{"empty", ComparisonReport{}, &fakePresenter{}, apperrors.ExitErrorGeneric},
		{"presenter error", ok, &fakePresenter{err: errBoom}, apperrors.ExitErrorFit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AnalyzeComparison(tt.report, tt.presenter, fixedHandler(apperrors.ExitErrorFit), io.Discard)
			if got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
			if !tt.presenter.called {
				t.Error("presenter was not called")
			}
		})
	}
}

func TestFitOne(t *testing.T) {
	t.Parallel()
	series := exponentialSeries(40)

	report, err := FitOne(context.Background(), decline.Harmonic, series, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Family != decline.Harmonic {
		t.Fatalf("expected a single harmonic result, got %+v", report.ParameterTable())
	}
	if len(report.Curves) != series.Len() || !math.IsNaN(report.Curves[0].Exponential) || math.IsNaN(report.Curves[0].Harmonic) {
		t.Errorf("curves should only carry the harmonic column")
	}

	fitter := stubFitter{fail: map[decline.Family]error{decline.Exponential: errBoom}}
	if _, err := FitOne(context.Background(), decline.Exponential, series, Options{Fitter: fitter}); !errors.Is(err, errBoom) {
		t.Errorf("abort: expected errBoom, got %v", err)
	}
	report, err = FitOne(context.Background(), decline.Exponential, series, Options{Fitter: fitter, Policy: ContinueOnFailure})
	if err != nil {
		t.Fatalf("continue: unexpected error: %v", err)
	}
	if report.Succeeded() || len(report.Failures) != 1 {
		t.Errorf("continue: expected one failure and no result, got %+v", report)
	}
}
