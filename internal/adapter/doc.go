// Package adapter turns the framework's rendered tree into a deployable
// artifact. The static adapter writes a plain file tree with a fallback page
// for static hosts; the server adapter writes a client tree, a server.json
// manifest and a Dockerfile for the bundled runtime. Both leave a build
// report under .sitedeploy/.
package adapter
