// Package build runs the deployment pipeline:
//
//  1. resolve the deployment configuration for the selected environment and mode
//  2. validate it
//  3. check the rendered pages (prerender policy decides warn or fail)
//  4. package the site with the selected adapter
//
// Every stage is timed and reported through metrics.Recorder; logs carry the
// build ID, environment and stage from the context.
package build
