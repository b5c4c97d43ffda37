// Package metrics records decline-fit outcomes as Prometheus metrics on a
// private registry and renders them in the text exposition format.
package metrics
