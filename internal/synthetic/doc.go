// Package synthetic generates reproducible daily production histories for
// a well following an Arps decline, with an optional buildup ramp,
// multiplicative noise and injected outliers. It stands in for recorded
// field data when exercising the preprocessing and fitting pipeline.
package synthetic
