package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgillis/stunt/types"
)

// v4Record describes one legacy object record. v4Defaults returns one
// whose relations are all Nothing.
type v4Record struct {
	id       int
	recycled bool
	name     string
	flags    int
	owner    int
	location int
	contents int
	next     int
	parent   int
	child    int
	sibling  int
}

func v4Defaults(id int, name string) v4Record {
	return v4Record{
		id: id, name: name, owner: -1,
		location: -1, contents: -1, next: -1,
		parent: -1, child: -1, sibling: -1,
	}
}

func (r v4Record) lines() []string {
	if r.recycled {
		return []string{fmt.Sprintf("#%d recycled", r.id)}
	}
	return []string{
		fmt.Sprintf("#%d", r.id),
		r.name,
		"", // handles placeholder
		fmt.Sprintf("%d", r.flags),
		fmt.Sprintf("%d", r.owner),
		fmt.Sprintf("%d", r.location),
		fmt.Sprintf("%d", r.contents),
		fmt.Sprintf("%d", r.next),
		fmt.Sprintf("%d", r.parent),
		fmt.Sprintf("%d", r.child),
		fmt.Sprintf("%d", r.sibling),
		"0", // verbdefs
		"0", // propdefs
		"0", // propvals
	}
}

// legacyDB assembles a complete v4 database file around the given
// object records, with one user (#0) and empty trailing sections.
func legacyDB(records ...v4Record) string {
	var lines []string
	lines = append(lines,
		"** LambdaMOO Database, Format Version 4 **",
		fmt.Sprintf("%d", len(records)),
		"0", // programs
		"0", // dummy
		"1", // users
		"0",
	)
	for _, r := range records {
		lines = append(lines, r.lines()...)
	}
	lines = append(lines,
		"0 clocks",
		"0 queued tasks",
		"0 suspended tasks",
		"0 active connections",
	)
	return strings.Join(lines, "\n") + "\n"
}

func TestLoadMinimalLegacyDB(t *testing.T) {
	database, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(v4Defaults(0, "root")))))
	require.NoError(t, err)

	assert.Equal(t, VersionBFBugFixed, database.InputVersion)
	assert.Equal(t, []types.ObjID{0}, database.Store.AllUsers())
	require.Equal(t, types.ObjID(0), database.Store.LastUsedObjid())

	o := database.Store.Find(0)
	require.NotNil(t, o)
	assert.Equal(t, "root", o.Name)

	// The upgrader emits a scalar parents Var, not a one-element list.
	assert.True(t, types.NewObj(types.Nothing).Equal(o.Parents))
	assert.True(t, types.NewEmptyList().Equal(o.Children))
	assert.True(t, types.NewObj(types.Nothing).Equal(o.Location))
	assert.True(t, types.NewEmptyList().Equal(o.Contents))
}

func TestLoadLegacyDanglingParentRepaired(t *testing.T) {
	rec := v4Defaults(0, "root")
	rec.parent = 5
	database, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(rec))))
	require.NoError(t, err)

	o := database.Store.Find(0)
	require.NotNil(t, o)
	assert.True(t, types.NewObj(types.Nothing).Equal(o.Parents))
}

func TestLoadLegacyParentCycleAborts(t *testing.T) {
	a := v4Defaults(0, "a")
	b := v4Defaults(1, "b")
	a.parent = 1
	b.parent = 0
	_, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(a, b))))
	require.Error(t, err)
	require.Contains(t, err.Error(), "hierarchies")
}

func TestLoadLegacyChainMaterialization(t *testing.T) {
	// #0 is the parent and location of #1, #2, #3; the intrusive
	// chains present them as 1 -> 2 -> 3.
	root := v4Defaults(0, "root")
	root.child = 1
	root.contents = 1
	kids := make([]v4Record, 3)
	for i := range kids {
		kids[i] = v4Defaults(i+1, "kid")
		kids[i].parent = 0
		kids[i].location = 0
		if i < 2 {
			kids[i].sibling = i + 2
			kids[i].next = i + 2
		}
	}
	database, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(root, kids[0], kids[1], kids[2]))))
	require.NoError(t, err)

	o := database.Store.Find(0)
	require.NotNil(t, o)
	assert.Equal(t, []types.ObjID{1, 2, 3}, o.ChildIDs())
	assert.Equal(t, []types.ObjID{1, 2, 3}, o.ContentIDs())
	for id := types.ObjID(1); id <= 3; id++ {
		kid := database.Store.Find(id)
		require.NotNil(t, kid)
		assert.Equal(t, []types.ObjID{0}, kid.ParentIDs())
		assert.Equal(t, types.ObjID(0), kid.LocationID())
	}
}

func TestLoadLegacyRecycledSlot(t *testing.T) {
	rec := v4Record{id: 1, recycled: true}
	database, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(v4Defaults(0, "root"), rec))))
	require.NoError(t, err)

	assert.Nil(t, database.Store.Find(1))
	assert.False(t, database.Store.Valid(1))
	assert.Equal(t, types.ObjID(1), database.Store.LastUsedObjid())
}

func TestLoadRejectsOutOfSequenceID(t *testing.T) {
	rec := v4Defaults(5, "skipped ahead")
	_, err := ReadDBFile(NewReader(strings.NewReader(legacyDB(rec))))
	require.Error(t, err)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	text := "** LambdaMOO Database, Format Version 99 **\n"
	_, err := ReadDBFile(NewReader(strings.NewReader(text)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "version")
}

func TestLoadRejectsBadHeader(t *testing.T) {
	_, err := ReadDBFile(NewReader(strings.NewReader("not a database\n")))
	require.ErrorIs(t, err, ErrIO)
}
