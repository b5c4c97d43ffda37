// Package preprocess turns a recorded, dated production history into the
// series the decline fitter consumes: a centered rolling-average rate with
// threshold outliers removed, optionally trimmed to the decline after the
// peak, on an elapsed-time axis in days, months or years.
package preprocess
