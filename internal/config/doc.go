// Package config loads, normalizes, and validates battreminder configuration.
//
// Configuration lives in a single TOML file (default
// ~/.config/batt_reminder.toml). When the file is missing the embedded sample
// is written in its place and the defaults are used. Validation rejects
// threshold orderings that would make a band unreachable.
//
// A loaded Config is treated as immutable and shared by every poll loop.
package config
