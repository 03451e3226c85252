// Package battery reads the kernel power_supply text files that expose a
// battery's charge percentage and charging status.
//
// Readers are stateless: every call opens and parses the files again, so a
// Reading always reflects the hardware at the moment of the call.
package battery
