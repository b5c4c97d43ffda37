// Package decline implements Arps decline curve analysis: the exponential,
// harmonic and hyperbolic rate models, the normalization that puts every
// series on the unit square before fitting, and the nonlinear
// least-squares fitter that recovers physical-unit parameters.
//
// Fitting always runs on normalized data (t/max(t), q/max(q)) starting
// from an all-ones guess, which is only adequate because of that scaling.
// The reported RMSE is measured on the normalized series, so it compares
// fits across wells of any size but is not a rate in physical units.
package decline
