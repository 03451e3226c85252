// Package instance keeps a single daemon running per lock path.
//
// The lock file holds the decimal PID of its owner. A file whose PID no
// longer names a live process is stale and is taken over. The check and the
// write happen while holding an flock on a sibling guard file, so two
// daemons starting at the same moment cannot both win.
package instance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning matches an *AlreadyRunningError.
var ErrAlreadyRunning = errors.New("another instance is already running")

// AlreadyRunningError names the live owner of the lock.
type AlreadyRunningError struct {
	PID  int
	Path string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("another instance is already running (pid %d); if it is not battreminder, remove %s", e.PID, e.Path)
}

func (e *AlreadyRunningError) Is(target error) bool {
	return target == ErrAlreadyRunning
}

// Lock is a PID-stamped lock file.
type Lock struct {
	path  string
	guard *flock.Flock
	pid   int

	mu       sync.Mutex
	held     bool
	released bool
}

// New returns a Lock for path. Nothing touches the filesystem until Acquire.
func New(path string) *Lock {
	return &Lock{
		path:  path,
		guard: flock.New(path + ".guard"),
		pid:   os.Getpid(),
	}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire claims the lock for this process.
func (l *Lock) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create lock directory: %w", err)
		}
	}
	if err := l.guard.Lock(); err != nil {
		return fmt.Errorf("acquire lock guard: %w", err)
	}
	defer func() { _ = l.guard.Unlock() }()

	pid, err := readPID(l.path)
	switch {
	case err == nil && pid != l.pid && Alive(pid):
		return &AlreadyRunningError{PID: pid, Path: l.path}
	case err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, errBadPID):
		return fmt.Errorf("read lock file: %w", err)
	}

	if err := writePID(l.path, l.pid); err != nil {
		return err
	}
	l.held = true
	return nil
}

// Release deletes the lock file. Only the first call after a successful
// Acquire does anything; later calls return nil.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held || l.released {
		return nil
	}
	l.released = true
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("remove lock file %s: %w", l.path, err)
	}
	return nil
}

// Inspect reports the PID recorded at path and whether it is alive. A
// missing file returns pid 0 and no error.
func Inspect(path string) (pid int, alive bool, err error) {
	pid, err = readPID(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return pid, Alive(pid), nil
}

// Alive reports whether pid names a process. EPERM means the process exists
// but belongs to someone else.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

var errBadPID = errors.New("lock file does not contain a pid")

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s", errBadPID, path)
	}
	return pid, nil
}

func writePID(path string, pid int) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write lock file: %w", err)
	}
	return nil
}
