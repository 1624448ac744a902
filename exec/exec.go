// Package exec runs child subprocesses on behalf of suspended tasks:
// the caller submits an argv vector and input, the child runs with that
// input on stdin and its stdout/stderr captured under a fixed minimal
// environment, and on
// termination the caller's task is resumed with the exit code and the
// captured output.
package exec

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrInvalidPath rejects argv[0] values that could escape the
	// binary root: paths beginning with ".." or containing "/.".
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotFound means argv[0] does not resolve to a binary under
	// the configured root.
	ErrNotFound = errors.New("does not exist")

	// ErrArgs means the argv vector was empty.
	ErrArgs = errors.New("no command given")
)

// childEnv is the entire environment a child sees.
var childEnv = []string{"PATH=/bin:/usr/bin"}

// Resume is invoked once when the child terminates, with the exit code
// and the captured stdout and stderr bytes; it is never invoked for a
// child stopped through Kill. It is the
// suspended task's wake-up call and runs on the waiter goroutine.
type Resume func(code int, stdout, stderr []byte)

// waiter is one running child and the task waiting on it
type waiter struct {
	pid    int
	cmd    *osexec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	resume Resume
}

// Manager tracks running children keyed by pid
type Manager struct {
	binRoot string

	mu      sync.Mutex
	waiters map[int]*waiter
}

// NewManager creates a manager whose children all live under binRoot
func NewManager(binRoot string) *Manager {
	return &Manager{
		binRoot: binRoot,
		waiters: make(map[int]*waiter),
	}
}

// resolve validates argv[0] and anchors it under the binary root
func (m *Manager) resolve(cmd string) (string, error) {
	if strings.HasPrefix(cmd, "..") {
		return "", ErrInvalidPath
	}
	if strings.Contains(cmd, "/.") {
		return "", ErrInvalidPath
	}
	path := filepath.Join(m.binRoot, strings.TrimPrefix(cmd, "/"))
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Run starts args[0] with the remaining arguments, feeding it input on
// stdin, and registers resume to be called on termination. The
// caller's task suspends itself after a successful Run; everything
// after that happens on the waiter goroutine. Returns the child's pid.
func (m *Manager) Run(args []string, input []byte, resume Resume) (int, error) {
	if len(args) == 0 {
		return 0, ErrArgs
	}
	path, err := m.resolve(args[0])
	if err != nil {
		return 0, err
	}

	cmd := osexec.Command(path, args[1:]...)
	cmd.Env = childEnv
	cmd.Stdin = bytes.NewReader(input)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		log.Printf("EXEC: Couldn't start %s: %v", path, err)
		return 0, fmt.Errorf("exec failed: %w", err)
	}

	pid := cmd.Process.Pid
	w := &waiter{pid: pid, cmd: cmd, stdout: stdout, stderr: stderr, resume: resume}
	m.mu.Lock()
	m.waiters[pid] = w
	m.mu.Unlock()

	log.Printf("EXEC: Executing %s...", path)
	go m.wait(w)
	return pid, nil
}

// wait blocks on the child and delivers the completion
func (m *Manager) wait(w *waiter) {
	err := w.cmd.Wait()

	m.mu.Lock()
	_, live := m.waiters[w.pid]
	delete(m.waiters, w.pid)
	m.mu.Unlock()
	if !live {
		return // killed; nobody to resume
	}

	code := 0
	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	w.resume(code, w.stdout.Bytes(), w.stderr.Bytes())
}

// Pids returns the pids of all children still being waited on
func (m *Manager) Pids() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pids := make([]int, 0, len(m.waiters))
	for pid := range m.waiters {
		pids = append(pids, pid)
	}
	return pids
}

// Kill terminates a child and drops its waiter; the suspended task is
// never resumed. Reports whether pid named a live child.
func (m *Manager) Kill(pid int) bool {
	m.mu.Lock()
	w, ok := m.waiters[pid]
	delete(m.waiters, pid)
	m.mu.Unlock()
	if !ok {
		return false
	}
	w.cmd.Process.Kill()
	return true
}
