package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgillis/stunt/types"
)

// TaskQueue is the scheduler's persisted state: clocks (obsolete but
// still framed), queued (forked) tasks, and suspended tasks. The
// scheduler owns the payload semantics; here each record is carried as
// an opaque block of lines, so a load/dump cycle reproduces it
// verbatim. Reading still has to walk the record structure to find
// the block boundaries.
type TaskQueue struct {
	clocks    []string
	queued    [][]string
	suspended [][]string
}

// ConnectionList is the list of formerly active connections, one line
// per connection, carried opaquely like the task queue.
type ConnectionList struct {
	header string
	lines  []string
}

func readTaskQueue(d *IO) (*TaskQueue, error) {
	q := &TaskQueue{}

	nclocks, err := readCountLine(d, "clocks")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nclocks; i++ {
		line, err := d.ReadLine()
		if err != nil {
			return nil, err
		}
		q.clocks = append(q.clocks, line)
	}

	nqueued, err := readCountLine(d, "queued tasks")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nqueued; i++ {
		block, err := readQueuedTask(d)
		if err != nil {
			return nil, fmt.Errorf("queued task %d: %w", i, err)
		}
		q.queued = append(q.queued, block)
	}

	nsuspended, err := readCountLine(d, "suspended tasks")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nsuspended; i++ {
		block, err := readSuspendedTask(d)
		if err != nil {
			return nil, fmt.Errorf("suspended task %d: %w", i, err)
		}
		q.suspended = append(q.suspended, block)
	}

	return q, nil
}

func (q *TaskQueue) write(d *IO) error {
	if err := d.Printf("%d clocks\n", len(q.clocks)); err != nil {
		return err
	}
	for _, line := range q.clocks {
		if err := d.WriteString(line); err != nil {
			return err
		}
	}
	if err := d.Printf("%d queued tasks\n", len(q.queued)); err != nil {
		return err
	}
	for _, block := range q.queued {
		for _, line := range block {
			if err := d.WriteString(line); err != nil {
				return err
			}
		}
	}
	if err := d.Printf("%d suspended tasks\n", len(q.suspended)); err != nil {
		return err
	}
	for _, block := range q.suspended {
		for _, line := range block {
			if err := d.WriteString(line); err != nil {
				return err
			}
		}
	}
	return nil
}

func readActiveConnections(d *IO) (*ConnectionList, error) {
	c := &ConnectionList{}
	line, err := d.ReadLine()
	if err != nil {
		return nil, err
	}
	c.header = line
	var count int
	// Both framings occur in the wild: with and without listeners.
	if _, err := fmt.Sscanf(line, "%d active connections", &count); err != nil {
		return nil, fmt.Errorf("%w: bad connection count %q", ErrIO, line)
	}
	for i := 0; i < count; i++ {
		l, err := d.ReadLine()
		if err != nil {
			return nil, err
		}
		c.lines = append(c.lines, l)
	}
	return c, nil
}

func (c *ConnectionList) write(d *IO) error {
	header := c.header
	if header == "" {
		header = "0 active connections"
	}
	if err := d.WriteString(header); err != nil {
		return err
	}
	for _, line := range c.lines {
		if err := d.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

// readCountLine reads a "<N> <what>" section header
func readCountLine(d *IO, what string) (int, error) {
	line, err := d.ReadLine()
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasSuffix(line, what) {
		return 0, fmt.Errorf("%w: expected %q header, got %q", ErrIO, what, line)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad %q count in %q", ErrIO, what, line)
	}
	return n, nil
}

// readQueuedTask captures one forked-task record. Its final element is
// always program text ending at the "." terminator, so the block runs
// through the first bare "." line.
func readQueuedTask(d *IO) ([]string, error) {
	d.StartCapture()
	for {
		line, err := d.ReadLine()
		if err != nil {
			d.StopCapture()
			return nil, err
		}
		if line == "." {
			return d.StopCapture(), nil
		}
	}
}

// readSuspendedTask captures one suspended-task record. These have no
// single terminator, so the reader walks the structure — header,
// optional wake value, task-local value, VM header, activations — and
// keeps the raw lines.
func readSuspendedTask(d *IO) ([]string, error) {
	d.StartCapture()
	err := walkSuspendedTask(d)
	captured := d.StopCapture()
	if err != nil {
		return nil, err
	}
	return captured, nil
}

func walkSuspendedTask(d *IO) error {
	// Header: "<start_time> <task_id>[ <wake value type code>]"
	line, err := d.ReadLine()
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("%w: bad suspended task header %q", ErrIO, line)
	}
	if len(fields) >= 3 {
		typeCode, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: bad wake value type in %q", ErrIO, line)
		}
		if err := readValuePayload(d, types.TypeCode(typeCode)); err != nil {
			return err
		}
	}

	// Task-local storage, in revisions that have it.
	if d.InputVersion() >= VersionTaskLocal {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}

	// VM header: "<top> <vector> <func_id>[ <max stack>]"
	line, err = d.ReadLine()
	if err != nil {
		return err
	}
	var top, vector, funcID int
	if n, _ := fmt.Sscanf(line, "%d %d %d", &top, &vector, &funcID); n < 3 {
		return fmt.Errorf("%w: bad VM header %q", ErrIO, line)
	}

	for a := 0; a <= top; a++ {
		if err := readActivation(d); err != nil {
			return fmt.Errorf("activation %d: %w", a, err)
		}
	}
	return nil
}

// readActivation consumes one stack frame of a suspended task
func readActivation(d *IO) error {
	line, err := d.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "language version") {
		return fmt.Errorf("%w: expected language version, got %q", ErrIO, line)
	}

	// Verb program, "." terminated.
	for {
		line, err := d.ReadLine()
		if err != nil {
			return err
		}
		if line == "." {
			break
		}
	}

	// Runtime environment: "<N> variables", then name/value pairs.
	nvars, err := readCountLine(d, "variables")
	if err != nil {
		return err
	}
	for i := 0; i < nvars; i++ {
		if _, err := d.ReadLine(); err != nil {
			return err
		}
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}

	// "<N> rt_stack slots in use", then the slot values.
	nslots, err := readCountLine(d, "rt_stack slots in use")
	if err != nil {
		return err
	}
	for i := 0; i < nslots; i++ {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}

	// Activation info: three values, the threaded and verbref lines,
	// four placeholder strings, verb name and aliases.
	for i := 0; i < 3; i++ {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}
	for i := 0; i < 8; i++ {
		if _, err := d.ReadLine(); err != nil {
			return err
		}
	}

	// Temp value, then the program counter line.
	if _, err := d.ReadValue(); err != nil {
		return err
	}
	if _, err := d.ReadLine(); err != nil {
		return err
	}
	return nil
}

// readValuePayload consumes a value whose type tag was already parsed
// off another line
func readValuePayload(d *IO, tag types.TypeCode) error {
	switch tag {
	case types.TypeInt, types.TypeErr, types.TypeCatch, types.TypeFinally:
		_, err := d.ReadNum()
		return err
	case types.TypeObj:
		_, err := d.ReadObjid()
		return err
	case types.TypeStr:
		_, err := d.ReadString()
		return err
	case types.TypeFloat:
		_, err := d.ReadFloat()
		return err
	case types.TypeList:
		count, err := d.ReadNum()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if _, err := d.ReadValue(); err != nil {
				return err
			}
		}
		return nil
	case types.TypeClear, types.TypeNone:
		return nil
	default:
		return fmt.Errorf("%w: unknown value type %d", ErrIO, tag)
	}
}
