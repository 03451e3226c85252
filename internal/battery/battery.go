package battery

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed reports a capacity file whose contents are not a decimal integer.
var ErrMalformed = errors.New("malformed battery capacity")

// Status is the charging state reported by the status file.
type Status int

const (
	Unknown Status = iota
	Charging
	Discharging
	Full
)

func (s Status) String() string {
	switch s {
	case Charging:
		return "Charging"
	case Discharging:
		return "Discharging"
	case Full:
		return "Full"
	default:
		return "Unknown"
	}
}

// ParseStatus maps the trimmed status file text to a Status. Anything other
// than the three known values, including "Not charging", is Unknown.
func ParseStatus(raw string) Status {
	switch strings.TrimSpace(raw) {
	case "Charging":
		return Charging
	case "Discharging":
		return Discharging
	case "Full":
		return Full
	default:
		return Unknown
	}
}

// Reading is one sample of the battery.
type Reading struct {
	Percentage int
	Status     Status
}

// Reader reads capacity and status from fixed file paths.
type Reader struct {
	CapacityPath string
	StatusPath   string
}

// NewReader returns a Reader for the given sysfs files.
func NewReader(capacityPath, statusPath string) *Reader {
	return &Reader{CapacityPath: capacityPath, StatusPath: statusPath}
}

// Read samples capacity and status. Status is read even when the capacity
// file fails so callers can still act on a known charging state.
func (r *Reader) Read() (Reading, error) {
	status, statusErr := r.ReadStatus()
	pct, capErr := r.ReadCapacity()
	if err := errors.Join(capErr, statusErr); err != nil {
		return Reading{Percentage: pct, Status: status}, err
	}
	return Reading{Percentage: pct, Status: status}, nil
}

// ReadCapacity returns the charge percentage.
func (r *Reader) ReadCapacity() (int, error) {
	data, err := os.ReadFile(r.CapacityPath)
	if err != nil {
		return 0, fmt.Errorf("read capacity %s: %w", r.CapacityPath, err)
	}
	trimmed := strings.TrimSpace(string(data))
	pct, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %s contains %q", ErrMalformed, r.CapacityPath, trimmed)
	}
	return pct, nil
}

// ReadStatus returns the charging status. A read failure yields Unknown
// together with the error.
func (r *Reader) ReadStatus() (Status, error) {
	data, err := os.ReadFile(r.StatusPath)
	if err != nil {
		return Unknown, fmt.Errorf("read status %s: %w", r.StatusPath, err)
	}
	return ParseStatus(string(data)), nil
}
