// Package metrics records build, prerender and serving metrics.
//
// Components receive a Recorder and default to NoopRecorder, so call sites
// never check for nil:
//
//	type Pipeline struct {
//	    recorder metrics.Recorder
//	}
//
// When monitoring.metrics.enabled is set the CLI swaps in a
// PrometheusRecorder backed by its own registry and mounts HTTPHandler on
// the configured metrics path of the server.
package metrics
