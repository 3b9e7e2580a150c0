// Package deploy resolves the deployment configuration of a site build.
//
// A build is described by three inputs: the execution mode (development or
// build), the target environment, and the production base path the project
// declares. Resolve turns those into a single immutable Config that the
// packaging adapters, the prerender checker and the server runtime consume.
//
// Resolve is a pure function. It performs no I/O and never fails; invariant
// checking is a separate step (Config.Validate) so callers decide when a
// malformed value should stop the build.
package deploy
