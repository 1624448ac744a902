package db

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgillis/stunt/types"
)

func TestLegacyRecordRoundTrip(t *testing.T) {
	src := NewStoreV4()
	o := src.NewObject()
	o.Name = "generic thing"
	o.Flags = FlagRead | FlagWrite
	o.Owner = 2
	o.Location = 3
	o.Next = 4
	o.Parent = 1
	o.Child = types.Nothing
	o.Sibling = 5
	o.Contents = types.Nothing
	o.Verbdefs = []*Verbdef{{Name: "take", Owner: 2, Perms: 0x35, Prep: -1}}
	o.Propdefs = []Propdef{{Name: "weight"}}
	o.Propvals = []Propval{{Var: types.NewInt(12), Owner: 2, Perms: 5}}
	src.NewRecycledObject()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, writeObjectV4(w, src, 0))
	require.NoError(t, writeObjectV4(w, src, 1))
	require.NoError(t, w.Flush())

	// The historical handles slot is an empty placeholder line
	// between the name and the flags.
	lines := strings.Split(buf.String(), "\n")
	require.Greater(t, len(lines), 3)
	assert.Equal(t, "generic thing", lines[1])
	assert.Equal(t, "", lines[2])

	dst := NewStoreV4()
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, readObjectV4(r, dst))
	require.NoError(t, readObjectV4(r, dst))

	got := dst.Find(0)
	require.NotNil(t, got)
	assert.Equal(t, *src.Find(0), *got)
	assert.Nil(t, dst.Find(1))
	assert.Equal(t, types.ObjID(1), dst.LastUsedObjid())
}
