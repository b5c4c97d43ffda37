// Package orchestration fits the three Arps decline families concurrently
// over one series and aggregates the results into a ComparisonReport. It
// decouples the fitting logic from presentation via the FitObserver and
// ResultPresenter interfaces.
package orchestration
