// Package errors provides the classified error primitives used across sitedeploy.
//
// Every error that reaches the CLI boundary is expected to be a ClassifiedError
// so the CLIErrorAdapter can pick an exit code and a log level for it.
//
//   - ErrorCategory: what failed (config, validation, prerender, filesystem, ...)
//   - ErrorSeverity: how bad it is (fatal, error, warning, info)
//   - ErrorBuilder: fluent construction with structured context
//
// Example usage:
//
//	err := errors.PrerenderError("missing route").
//		WithContext("route", "/about").
//		WithContext("referrer", "/").
//		Build()
package errors
