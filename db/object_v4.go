package db

import (
	"fmt"

	"github.com/mgillis/stunt/types"
)

// ObjectV4 is an object in the legacy layout, where the parent/child
// and location/contents relations are intrusive chains: traversing
// all children of P means walking P.Child, then Sibling, Sibling, ...
// until Nothing.
type ObjectV4 struct {
	ID    types.ObjID
	Name  string
	Flags ObjectFlags
	Owner types.ObjID

	Location types.ObjID
	Contents types.ObjID
	Next     types.ObjID

	Parent  types.ObjID
	Child   types.ObjID
	Sibling types.ObjID

	Verbdefs []*Verbdef
	Propdefs []Propdef
	Propvals []Propval
}

// readObjectV4 reads one legacy object record into the legacy store,
// enforcing the same id-sequence rule as the current reader.
func readObjectV4(d *IO, s *StoreV4) error {
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
	// The handles string is dead since the prehistory formats; records
	// still carry an empty placeholder for archival-tool compatibility.
	if _, err = d.ReadString(); err != nil {
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

	if o.Location, err = d.ReadObjid(); err != nil {
		return err
	}
	if o.Contents, err = d.ReadObjid(); err != nil {
		return err
	}
	if o.Next, err = d.ReadObjid(); err != nil {
		return err
	}

	if o.Parent, err = d.ReadObjid(); err != nil {
		return err
	}
	if o.Child, err = d.ReadObjid(); err != nil {
		return err
	}
	if o.Sibling, err = d.ReadObjid(); err != nil {
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

// writeObjectV4 writes one legacy object record, including the empty
// handles placeholder after the name.
func writeObjectV4(d *IO, s *StoreV4, id types.ObjID) error {
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
	if err := d.WriteString(""); err != nil {
		return err
	}
	if err := d.WriteNum(int(o.Flags)); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Owner); err != nil {
		return err
	}

	if err := d.WriteObjid(o.Location); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Contents); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Next); err != nil {
		return err
	}

	if err := d.WriteObjid(o.Parent); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Child); err != nil {
		return err
	}
	if err := d.WriteObjid(o.Sibling); err != nil {
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
