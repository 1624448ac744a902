package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mgillis/stunt/types"
)

// ErrIO is the failure signal raised by the codec on any stream error
// or parse mismatch. The dump orchestrator catches exactly this error
// and decides whether to abandon or retry; during a load it aborts the
// load. Check it with errors.Is.
var ErrIO = errors.New("database I/O failed")

// IO is the codec context for one load or one dump. The orchestrator
// binds it to a stream before the operation and drops it afterwards;
// nothing here is process-global.
type IO struct {
	in  *bufio.Reader
	out *bufio.Writer

	inputVersion Version

	// capture accumulates every line consumed from the input while
	// capturing is set. Used to carry opaque sections (task queue payloads)
	// through a load/dump cycle verbatim.
	capture   []string
	capturing bool
}

// NewReader creates a codec bound to an input stream
func NewReader(r io.Reader) *IO {
	return &IO{in: bufio.NewReader(r)}
}

// NewWriter creates a codec bound to an output stream
func NewWriter(w io.Writer) *IO {
	return &IO{out: bufio.NewWriter(w)}
}

// InputVersion returns the format revision of the stream being read
func (d *IO) InputVersion() Version {
	return d.inputVersion
}

// Flush flushes the buffered output stream
func (d *IO) Flush() error {
	if err := d.out.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// --- Capture (opaque section preservation) ---

// StartCapture begins recording every line consumed from the input.
func (d *IO) StartCapture() {
	d.capture = nil
	d.capturing = true
}

// StopCapture ends recording and returns the captured lines.
func (d *IO) StopCapture() []string {
	d.capturing = false
	lines := d.capture
	d.capture = nil
	return lines
}

// --- Input ---

// ReadLine reads one line, without its newline
func (d *IO) ReadLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if d.capturing {
		d.capture = append(d.capture, line)
	}
	return line, nil
}

// ReadNum reads an integer occupying its own line
func (d *IO) ReadNum() (int, error) {
	line, err := d.ReadLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: expected number, got %q", ErrIO, line)
	}
	return n, nil
}

// ReadInt64 reads a 64-bit integer occupying its own line
func (d *IO) ReadInt64() (int64, error) {
	line, err := d.ReadLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected number, got %q", ErrIO, line)
	}
	return n, nil
}

// ReadObjid reads an object reference. The bare number form is what
// records carry; a leading # is tolerated.
func (d *IO) ReadObjid() (types.ObjID, error) {
	line, err := d.ReadLine()
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "#")
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected objid, got %q", ErrIO, line)
	}
	return types.ObjID(n), nil
}

// ReadString reads a string occupying its own line
func (d *IO) ReadString() (string, error) {
	return d.ReadLine()
}

// ReadFloat reads a floating-point number occupying its own line
func (d *IO) ReadFloat() (float64, error) {
	line, err := d.ReadLine()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected float, got %q", ErrIO, line)
	}
	return f, nil
}

// Scanf reads one line and parses it against format. Every conversion
// in format must match or the call fails.
func (d *IO) Scanf(format string, args ...any) error {
	line, err := d.ReadLine()
	if err != nil {
		return err
	}
	n, err := fmt.Sscanf(line, format, args...)
	if err != nil || n != len(args) {
		return fmt.Errorf("%w: %q does not match %q", ErrIO, line, format)
	}
	return nil
}

// ReadValue reads a type-tagged value: the tag on its own line, then
// the payload
func (d *IO) ReadValue() (types.Value, error) {
	tag, err := d.ReadNum()
	if err != nil {
		return nil, err
	}

	switch types.TypeCode(tag) {
	case types.TypeInt:
		n, err := d.ReadInt64()
		if err != nil {
			return nil, err
		}
		return types.NewInt(n), nil

	case types.TypeObj:
		id, err := d.ReadObjid()
		if err != nil {
			return nil, err
		}
		return types.NewObj(id), nil

	case types.TypeStr:
		s, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return types.NewStr(s), nil

	case types.TypeErr:
		code, err := d.ReadNum()
		if err != nil {
			return nil, err
		}
		return types.NewErr(types.ErrorCode(code)), nil

	case types.TypeList:
		count, err := d.ReadNum()
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: negative list length %d", ErrIO, count)
		}
		elements := make([]types.Value, count)
		for i := 0; i < count; i++ {
			elements[i], err = d.ReadValue()
			if err != nil {
				return nil, err
			}
		}
		return types.NewList(elements), nil

	case types.TypeClear:
		return types.ClearValue{}, nil

	case types.TypeNone:
		return types.NoneValue{}, nil

	case types.TypeCatch:
		pc, err := d.ReadInt64()
		if err != nil {
			return nil, err
		}
		return types.CatchValue{PC: pc}, nil

	case types.TypeFinally:
		pc, err := d.ReadInt64()
		if err != nil {
			return nil, err
		}
		return types.FinallyValue{PC: pc}, nil

	case types.TypeFloat:
		f, err := d.ReadFloat()
		if err != nil {
			return nil, err
		}
		return types.NewFloat(f), nil

	default:
		return nil, fmt.Errorf("%w: unknown value type %d", ErrIO, tag)
	}
}

// --- Output ---

func (d *IO) werr(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// WriteNum writes an integer on its own line
func (d *IO) WriteNum(n int) error {
	_, err := fmt.Fprintf(d.out, "%d\n", n)
	return d.werr(err)
}

// WriteInt64 writes a 64-bit integer on its own line
func (d *IO) WriteInt64(n int64) error {
	_, err := fmt.Fprintf(d.out, "%d\n", n)
	return d.werr(err)
}

// WriteObjid writes an object reference on its own line
func (d *IO) WriteObjid(id types.ObjID) error {
	return d.WriteInt64(int64(id))
}

// WriteString writes a string followed by newline
func (d *IO) WriteString(s string) error {
	_, err := fmt.Fprintf(d.out, "%s\n", s)
	return d.werr(err)
}

// WriteFloat writes a float with 19 significant digits, enough to
// round-trip any IEEE double
func (d *IO) WriteFloat(f float64) error {
	_, err := fmt.Fprintf(d.out, "%.19g\n", f)
	return d.werr(err)
}

// Printf writes formatted text to the output stream
func (d *IO) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(d.out, format, args...)
	return d.werr(err)
}

// WriteValue writes a type-tagged value
func (d *IO) WriteValue(v types.Value) error {
	if v == nil {
		// nil stands in for a clear slot
		return d.WriteNum(int(types.TypeClear))
	}
	if err := d.WriteNum(int(v.Type())); err != nil {
		return err
	}

	switch val := v.(type) {
	case types.IntValue:
		return d.WriteInt64(val.Val)
	case types.ObjValue:
		return d.WriteObjid(val.ID())
	case types.StrValue:
		return d.WriteString(val.Value())
	case types.ErrValue:
		return d.WriteNum(int(val.Code()))
	case types.ListValue:
		if err := d.WriteNum(val.Len()); err != nil {
			return err
		}
		for _, e := range val.Elements() {
			if err := d.WriteValue(e); err != nil {
				return err
			}
		}
		return nil
	case types.ClearValue, types.NoneValue:
		return nil // tag only
	case types.CatchValue:
		return d.WriteInt64(val.PC)
	case types.FinallyValue:
		return d.WriteInt64(val.PC)
	case types.FloatValue:
		return d.WriteFloat(val.Val)
	default:
		return fmt.Errorf("%w: cannot persist value of type %v", ErrIO, v.Type())
	}
}
