package target

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Target is a live handle to the watched process, resolved fresh on every
// evaluation. Handles are never cached: the PID file may outlive the process
// and the PID may be reused by something unrelated.
type Target struct {
	PID  int32
	Name string

	proc *gopsproc.Process
}

// ErrUnreadablePIDFile marks a PID file that exists but does not hold a
// decimal PID. Callers treat it the same as an absent process, but the
// distinct error lets them log it at a higher severity.
type ErrUnreadablePIDFile struct {
	Path string
	Err  error
}

func (e *ErrUnreadablePIDFile) Error() string {
	return fmt.Sprintf("unreadable pidfile %s: %v", e.Path, e.Err)
}

func (e *ErrUnreadablePIDFile) Unwrap() error { return e.Err }

// ReadPIDFile reads a PID file holding a single decimal integer with
// optional surrounding whitespace. A missing file returns (0, false, nil);
// unreadable content returns an *ErrUnreadablePIDFile.
func ReadPIDFile(path string) (int, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, &ErrUnreadablePIDFile{Path: path, Err: err}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, false, &ErrUnreadablePIDFile{Path: path, Err: err}
	}
	return pid, true, nil
}

// Resolve locates the watched process through its PID file. It returns
// (nil, nil) for every condition that means "not running": the file is
// absent, the PID is dead, or the live process is not named name. The name
// comparison is exact and case-sensitive, which guards against PID reuse by
// an unrelated process. Only an unreadable PID file is reported as an error,
// and callers still treat it as "not running".
func Resolve(pidfile, name string) (*Target, error) {
	pid, ok, err := ReadPIDFile(pidfile)
	if err != nil {
		return nil, err
	}
	if !ok || pid <= 0 {
		return nil, nil
	}
	exists, err := gopsproc.PidExists(int32(pid))
	if err != nil || !exists {
		return nil, nil
	}
	proc, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return nil, nil
	}
	procName, err := proc.Name()
	if err != nil {
		return nil, nil
	}
	if procName != name {
		return nil, nil
	}
	return &Target{PID: int32(pid), Name: procName, proc: proc}, nil
}

// Alive reports whether the process behind the handle is still running.
func (t *Target) Alive() bool {
	running, err := t.proc.IsRunning()
	return err == nil && running
}

// Terminate sends the graceful termination signal (SIGTERM).
func (t *Target) Terminate() error { return t.proc.Terminate() }

// Kill sends the forceful termination signal (SIGKILL).
func (t *Target) Kill() error { return t.proc.Kill() }

func (t *Target) String() string {
	return fmt.Sprintf("%s(pid=%d)", t.Name, t.PID)
}
