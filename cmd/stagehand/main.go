// Stagehand is a local-first development proxy for static sites.
//
// It serves files from a local content root when they exist and falls
// back to a remote preview origin when they don't, so a developer can
// work on a handful of files while the rest of the site comes from the
// deployed environment.
//
// Usage:
//
//	# Serve the current directory with defaults
//	stagehand serve
//
//	# Serve with a custom configuration file
//	stagehand serve --config stagehand.yaml
//
//	# Override the upstream origin
//	stagehand serve --origin https://main--site--org.aem.page
//
//	# Check a configuration file without starting the server
//	stagehand validate --config stagehand.yaml
//
//	# Show version information
//	stagehand version
package main

func main() {
	Execute()
}
