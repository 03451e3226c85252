// Package alert delivers battery alerts to the user.
//
// A Dispatcher bundles the three ways the daemon gets attention: a desktop
// notification (D-Bus, a notify-send compatible binary, or nothing), an
// audio cue played through an external player, and user commands. An
// optional ntfy topic mirrors every notification to a phone.
//
// Commands and sounds are fire-and-forget; their exit status is only logged.
package alert
