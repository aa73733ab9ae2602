// Package config loads patrol's startup configuration.
//
// # Configuration Discovery
//
// Load resolves values in this order (later wins):
//
//  1. Built-in defaults
//  2. The TOML file at the given path, or ~/.config/patrol/config.toml
//  3. PATROL_* environment variables (PATROL_URL, PATROL_API_KEY, ...)
//
// A missing file is not an error. Tilde expansion is applied to the config
// path and to log_file.
//
// # TOML Format
//
//	url = "https://db.example.com/rest/v1/violations"
//	api_key = "..."
//	poll_interval = "10s"    # or bare seconds: 10
//	request_timeout = "10s"
//	log_file = "~/.local/state/patrol/patrol.log"
//	log_level = "info"
//
// # Connection Parameters
//
// url and api_key have no defaults and are deliberately not validated. An
// empty or wrong value shows up as failing List/Update requests (and therefore
// as the fetch error indicator in the UI), never as a startup failure.
//
// # Error Handling
//
// Load returns errors only for an unreadable or unparsable file and for
// malformed durations.
package config
