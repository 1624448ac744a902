package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgillis/stunt/types"
)

// ObjectFlags represents object permission flags
type ObjectFlags int

const (
	FlagUser       ObjectFlags = 1 << 0
	FlagProgrammer ObjectFlags = 1 << 1
	FlagWizard     ObjectFlags = 1 << 2
	FlagRead       ObjectFlags = 1 << 4
	FlagWrite      ObjectFlags = 1 << 5
	FlagFertile    ObjectFlags = 1 << 7
)

// Has checks if a flag is set
func (f ObjectFlags) Has(flag ObjectFlags) bool {
	return f&flag != 0
}

// Object is an object in the current layout. All cross-object
// references are ObjIDs inside Var fields, never Go pointers: the
// recycler punches holes in the table and back-references through
// pointers would dangle.
//
// Parents is polymorphic: a single object Var (the common case, and
// what the upgrader produces) or a list of object Vars for multiple
// inheritance. Children and Contents are always lists; Location is
// always a single object Var.
type Object struct {
	ID    types.ObjID
	Name  string
	Flags ObjectFlags
	Owner types.ObjID

	Location types.Value
	Contents types.Value
	Parents  types.Value
	Children types.Value

	Verbdefs []*Verbdef
	Propdefs []Propdef
	Propvals []Propval
}

// newObjectDefaults returns an object with empty relations
func newObjectDefaults(id types.ObjID) *Object {
	return &Object{
		ID:       id,
		Location: types.NewObj(types.Nothing),
		Contents: types.NewEmptyList(),
		Parents:  types.NewObj(types.Nothing),
		Children: types.NewEmptyList(),
	}
}

// ParentIDs returns the parent set in order, whether Parents is a
// scalar or a list. The Nothing sentinel is kept out of the result.
func (o *Object) ParentIDs() []types.ObjID {
	return objidsOf(o.Parents)
}

// ChildIDs returns the children in list order
func (o *Object) ChildIDs() []types.ObjID {
	return objidsOf(o.Children)
}

// ContentIDs returns the contents in list order
func (o *Object) ContentIDs() []types.ObjID {
	return objidsOf(o.Contents)
}

// LocationID returns the location, or Nothing
func (o *Object) LocationID() types.ObjID {
	if obj, ok := o.Location.(types.ObjValue); ok {
		return obj.ID()
	}
	return types.Nothing
}

func objidsOf(v types.Value) []types.ObjID {
	var ids []types.ObjID
	for _, e := range types.Enlist(v).Elements() {
		if obj, ok := e.(types.ObjValue); ok && obj.ID() != types.Nothing {
			ids = append(ids, obj.ID())
		}
	}
	return ids
}

// parseObjectHeader parses a record-opening line: "#<id>" begins a
// full record, "#<id> recycled" marks a recycled slot.
func parseObjectHeader(line string) (id types.ObjID, recycled bool, err error) {
	rest, ok := strings.CutPrefix(line, "#")
	if !ok {
		return 0, false, fmt.Errorf("%w: bad object header %q", ErrIO, line)
	}
	if r, found := strings.CutSuffix(rest, " recycled"); found {
		recycled = true
		rest = r
	}
	n, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad object header %q", ErrIO, line)
	}
	return types.ObjID(n), recycled, nil
}

// readObject reads one current-layout object record into the store.
// The record's id must be exactly the next unused id; an out-of-order
// record fails the load.
func readObject(d *IO, s *Store) error {
	line, err := d.ReadLine()
	if err != nil {
		return err
	}
	id, recycled, err := parseObjectHeader(line)
	if err != nil {
		return err
	}
	if id != s.LastUsedObjid()+1 {
		return fmt.Errorf("%w: object #%d out of sequence (expected #%d)",
			ErrIO, id, s.LastUsedObjid()+1)
	}
	if recycled {
		s.NewRecycledObject()
		return nil
	}

	o := s.NewObject()
	if o.Name, err = d.ReadString(); err != nil {
		return err
	}
	flags, err := d.ReadNum()
	if err != nil {
		return err
	}
	o.Flags = ObjectFlags(flags)

	if o.Owner, err = d.ReadObjid(); err != nil {
		return err
	}

	if o.Location, err = d.ReadValue(); err != nil {
		return err
	}
	if o.Contents, err = d.ReadValue(); err != nil {
		return err
	}
	if o.Parents, err = d.ReadValue(); err != nil {
		return err
	}
	if o.Children, err = d.ReadValue(); err != nil {
		return err
	}

	if o.Verbdefs, err = readVerbdefs(d); err != nil {
		return err
	}
	if o.Propdefs, err = readPropdefs(d); err != nil {
		return err
	}
	if o.Propvals, err = readPropvals(d); err != nil {
		return err
	}
	return nil
}

// writeObject writes one current-layout object record. Recycled slots
// (and holes) write only the recycled marker.
func writeObject(d *IO, s *Store, id types.ObjID) error {
	o := s.Find(id)
	if o == nil {
		return d.Printf("#%d recycled\n", id)
	}

	if err := d.Printf("#%d\n", id); err != nil {
		return err
	}
	if err := d.WriteString(o.Name); err != nil {
		return err
	}
	if err := d.WriteNum(int(o.Flags)); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Owner); err != nil {
		return err
	}

	if err := d.WriteValue(o.Location); err != nil {
		return err
	}
	if err := d.WriteValue(o.Contents); err != nil {
		return err
	}
	if err := d.WriteValue(o.Parents); err != nil {
		return err
	}
	if err := d.WriteValue(o.Children); err != nil {
		return err
	}

	if err := writeVerbdefs(d, o.Verbdefs); err != nil {
		return err
	}
	if err := writePropdefs(d, o.Propdefs); err != nil {
		return err
	}
	return writePropvals(d, o.Propvals)
}
