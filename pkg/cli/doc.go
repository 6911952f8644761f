// Package cli holds helpers shared by the stagehand commands: typed
// errors that map to exit codes and signal-aware shutdown contexts.
package cli
