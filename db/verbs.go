package db

import (
	"fmt"

	"github.com/mgillis/stunt/types"
)

// Verbdef is the persisted metadata for one verb on an object. Verbs
// are ordered; external code addresses them by 1-based index, so the
// slice order is semantically meaningful and must survive a
// load/dump cycle exactly.
//
// Perms carries the argument-spec encoding in bits 4..7; the
// persistence layer treats the whole number as opaque.
type Verbdef struct {
	Name    string
	Owner   types.ObjID
	Perms   int
	Prep    int
	Program *Program
}

func readVerbdef(d *IO) (*Verbdef, error) {
	v := &Verbdef{}
	var err error
	if v.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if v.Owner, err = d.ReadObjid(); err != nil {
		return nil, err
	}
	if v.Perms, err = d.ReadNum(); err != nil {
		return nil, err
	}
	if v.Prep, err = d.ReadNum(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Verbdef) write(d *IO) error {
	if err := d.WriteString(v.Name); err != nil {
		return err
	}
	if err := d.WriteObjid(v.Owner); err != nil {
		return err
	}
	if err := d.WriteNum(v.Perms); err != nil {
		return err
	}
	return d.WriteNum(v.Prep)
}

// readVerbdefs reads a count-prefixed verbdef list, preserving order
func readVerbdefs(d *IO) ([]*Verbdef, error) {
	count, err := d.ReadNum()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative verbdef count %d", ErrIO, count)
	}
	verbs := make([]*Verbdef, 0, count)
	for i := 0; i < count; i++ {
		v, err := readVerbdef(d)
		if err != nil {
			return nil, err
		}
		verbs = append(verbs, v)
	}
	return verbs, nil
}

func writeVerbdefs(d *IO, verbs []*Verbdef) error {
	if err := d.WriteNum(len(verbs)); err != nil {
		return err
	}
	for _, v := range verbs {
		if err := v.write(d); err != nil {
			return err
		}
	}
	return nil
}
