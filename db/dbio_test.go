package db

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgillis/stunt/types"
)

func TestValueRoundTrip(t *testing.T) {
	values := []types.Value{
		types.NewInt(0),
		types.NewInt(-42),
		types.NewObj(types.Nothing),
		types.NewObj(1027),
		types.NewStr(""),
		types.NewStr("a room description"),
		types.NewErr(types.ErrPerm),
		types.NewFloat(3.0),
		types.NewFloat(0.1),
		types.ClearValue{},
		types.NoneValue{},
		types.NewEmptyList(),
		types.NewList([]types.Value{
			types.NewInt(1),
			types.NewStr("two"),
			types.NewList([]types.Value{types.NewObj(3)}),
		}),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		require.NoError(t, w.WriteValue(v))
	}
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	for _, want := range values {
		got, err := r.ReadValue()
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "wrote %v, read %v", want, got)
	}
}

func TestReadValueUnknownType(t *testing.T) {
	r := NewReader(strings.NewReader("99\n"))
	_, err := r.ReadValue()
	require.ErrorIs(t, err, ErrIO)
}

func TestReadNumRejectsGarbage(t *testing.T) {
	r := NewReader(strings.NewReader("twelve\n"))
	_, err := r.ReadNum()
	require.ErrorIs(t, err, ErrIO)
}

func TestReadTruncatedStream(t *testing.T) {
	// A list that promises more elements than the stream holds.
	r := NewReader(strings.NewReader("4\n2\n0\n1\n"))
	_, err := r.ReadValue()
	require.ErrorIs(t, err, ErrIO)
}

func TestReadObjidForms(t *testing.T) {
	r := NewReader(strings.NewReader("-1\n#12\n"))
	id, err := r.ReadObjid()
	require.NoError(t, err)
	assert.Equal(t, types.Nothing, id)

	id, err = r.ReadObjid()
	require.NoError(t, err)
	assert.Equal(t, types.ObjID(12), id)
}

func TestScanfMismatch(t *testing.T) {
	r := NewReader(strings.NewReader("#3:1\nnot a header\n"))
	var oid, vnum int
	require.NoError(t, r.Scanf("#%d:%d", &oid, &vnum))
	assert.Equal(t, 3, oid)
	assert.Equal(t, 1, vnum)

	require.ErrorIs(t, r.Scanf("#%d:%d", &oid, &vnum), ErrIO)
}
