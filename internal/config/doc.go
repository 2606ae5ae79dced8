// Package config handles configuration loading for docchat.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. Missing fields take the values from Default().
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from the -config flag
//  2. Path from DOCCHAT_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/docchat/config.yaml
//  4. ~/.config/docchat/config.yaml
//
// If the file does not exist, LoadOrDefault returns Default().
// A path ending in .toml is decoded as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  base_url: "${DOCCHAT_BACKEND}"
//
// # Configuration Sections
//
// Backend:
//
//	backend:
//	  base_url: "http://localhost:8000"   # http:// is assumed when omitted
//	  timeout: "2m"   # empty = no timeout
//
// Uploads:
//
//	uploads:
//	  allowed_extensions: [".pdf", ".txt"]
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// The same settings in TOML:
//
//	[backend]
//	base_url = "http://localhost:8000"
//
//	[logging]
//	level = "debug"
package config
