package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// suspendedBlock is a minimal structurally valid suspended task in the
// current format: header with an integer wake value, task-local value,
// a one-frame VM.
var suspendedBlock = []string{
	"1767134605 2112268937 0", // start time, task id, INT wake value
	"7",                       // wake value payload
	"0",                       // task local: INT
	"0",
	"0 0 0 50", // VM header: top, vector, func id, max stack
	"language version 1",
	"return 0;",
	".",
	"1 variables",
	"args",
	"4", // LIST
	"0",
	"0 rt_stack slots in use",
	"0", // dummy: INT -111
	"-111",
	"1", // this: OBJ
	"2",
	"1", // vloc: OBJ
	"2",
	"0",                       // threaded
	"2 -7 -8 2 -9 2 2 -10 1",  // verbref line
	"No",
	"More",
	"Parse",
	"Infos",
	"go",
	"go north",
	"0", // temp: INT
	"0",
	"88 0 0", // pc line
}

func TestSuspendedTaskPreserved(t *testing.T) {
	text := strings.Join(append([]string{
		"0 clocks",
		"0 queued tasks",
		"1 suspended tasks",
	}, suspendedBlock...), "\n") + "\n"

	r := NewReader(strings.NewReader(text))
	r.inputVersion = CurrentVersion
	q, err := readTaskQueue(r)
	require.NoError(t, err)
	require.Len(t, q.suspended, 1)
	assert.Equal(t, suspendedBlock, q.suspended[0])
}

func TestSuspendedTaskWithoutTaskLocal(t *testing.T) {
	// Pre-TaskLocal revisions have no task-local value between the
	// wake value and the VM header.
	block := []string{
		"1767134605 99 1", // OBJ wake value
		"-1",
		"0 0 0",
		"language version 1",
		".",
		"0 variables",
		"0 rt_stack slots in use",
		"0", "-111",
		"1", "-1",
		"1", "-1",
		"0",
		"-1 -7 -8 -1 -9 -1 -1 -10 0",
		"No", "More", "Parse", "Infos",
		"", "",
		"0", "0",
		"0 0 0",
	}
	text := strings.Join(append([]string{
		"0 clocks",
		"0 queued tasks",
		"1 suspended tasks",
	}, block...), "\n") + "\n"

	r := NewReader(strings.NewReader(text))
	r.inputVersion = VersionBFBugFixed
	q, err := readTaskQueue(r)
	require.NoError(t, err)
	require.Len(t, q.suspended, 1)
	assert.Equal(t, block, q.suspended[0])
}

func TestMalformedTaskSectionFails(t *testing.T) {
	r := NewReader(strings.NewReader("not a count\n"))
	_, err := readTaskQueue(r)
	require.ErrorIs(t, err, ErrIO)
}

func TestClockLinesCarried(t *testing.T) {
	text := "2 clocks\n11 22 33\n44 55 66\n0 queued tasks\n0 suspended tasks\n"
	r := NewReader(strings.NewReader(text))
	q, err := readTaskQueue(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"11 22 33", "44 55 66"}, q.clocks)
}
