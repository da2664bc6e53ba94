// Package metrics observes relaxation runs: scalar summaries of a run,
// its convergence history, and Prometheus counters for solver activity.
package metrics
