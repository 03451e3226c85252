// Package session decides whether the daemon may run in the current desktop
// session, based on XDG_CURRENT_DESKTOP.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvVar names the environment variable holding the desktop session.
const EnvVar = "XDG_CURRENT_DESKTOP"

// Any matches every session, including one with EnvVar unset.
const Any = "any"

var (
	ErrSessionUnset    = errors.New(EnvVar + " is not set")
	ErrSessionMismatch = errors.New("desktop session is not in session.targets")
)

// Current returns the live session name and whether EnvVar is set.
func Current() (string, bool) {
	return os.LookupEnv(EnvVar)
}

// Check validates current against targets. set reports whether the
// variable exists at all.
func Check(current string, set bool, targets []string) error {
	for _, target := range targets {
		if strings.EqualFold(strings.TrimSpace(target), Any) {
			return nil
		}
	}
	if !set {
		return ErrSessionUnset
	}
	for _, target := range targets {
		if strings.TrimSpace(target) == current {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in %v", ErrSessionMismatch, current, targets)
}

// CheckEnv runs Check against the process environment.
func CheckEnv(targets []string) error {
	current, set := Current()
	return Check(current, set, targets)
}
