// Package metrics exports conversation statistics to Prometheus.
package metrics
