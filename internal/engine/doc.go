// Package engine implements the threshold state machine that turns battery
// readings into alerts.
//
// Decide is a pure function from (reading, allow-execute gate, policy) to a
// Decision. Engine wraps it in a poll loop: it reads the sensor, dispatches
// the decided alerts, carries the gate forward, and sleeps. The gate keeps a
// low or critical command from running more than once per discharge episode;
// it reopens only when a discharging reading climbs back to the low
// threshold or above.
package engine
