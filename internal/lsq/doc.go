// Package lsq solves small dense nonlinear least-squares problems with the
// Levenberg-Marquardt method, using MINPACK-style defaults for the
// evaluation budget and tolerances.
package lsq
