// Package config loads and validates smarthouse-core configuration.
//
// Configuration is read from a YAML file with three layers of precedence:
//
//  1. Hardcoded defaults
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern SMARTHOUSE_SECTION_KEY,
// for example SMARTHOUSE_DATABASE_PATH or SMARTHOUSE_API_PORT.
package config
