// Package main hosts the battreminder CLI.
//
// Running the binary with no subcommand starts the daemon, matching how it
// is launched from a compositor autostart entry. The remaining commands
// inspect the battery, send a test alert, and scaffold or validate the
// configuration file.
package main
