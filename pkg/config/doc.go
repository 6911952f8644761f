// Package config provides configuration loading, validation, and defaults
// for Stagehand.
//
// Configuration is resolved once at process start and treated as immutable
// for the lifetime of the server. The resolution order is:
//
//  1. Built-in defaults (DefaultConfig)
//  2. YAML configuration file, if one is given
//  3. Environment variable overrides (STAGEHAND_SECTION_FIELD)
//
// The final configuration is validated; all field errors are collected and
// reported together rather than failing on the first problem.
//
// Example:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("stagehand.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
