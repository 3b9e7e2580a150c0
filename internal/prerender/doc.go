// Package prerender verifies the framework's rendered pages before they are
// packaged. Starting from the configured entries it follows internal links
// under the deployment base path and reports routes and fragments that do
// not exist.
package prerender
