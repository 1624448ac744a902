package db

import (
	"fmt"

	"github.com/mgillis/stunt/types"
)

// Propdef is a property schema entry: a name defined on one object.
// Propdefs are ordered.
type Propdef struct {
	Name string
}

// Propval is one property value slot. An object's propval array is
// flat; its layout mirrors the concatenation of propdefs walked
// ancestor-first, so only the position ties a slot to its name.
type Propval struct {
	Var   types.Value
	Owner types.ObjID
	Perms int
}

func readPropdefs(d *IO) ([]Propdef, error) {
	count, err := d.ReadNum()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative propdef count %d", ErrIO, count)
	}
	defs := make([]Propdef, 0, count)
	for i := 0; i < count; i++ {
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		defs = append(defs, Propdef{Name: name})
	}
	return defs, nil
}

func writePropdefs(d *IO, defs []Propdef) error {
	if err := d.WriteNum(len(defs)); err != nil {
		return err
	}
	for _, p := range defs {
		if err := d.WriteString(p.Name); err != nil {
			return err
		}
	}
	return nil
}

func readPropvals(d *IO) ([]Propval, error) {
	count, err := d.ReadNum()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative propval count %d", ErrIO, count)
	}
	vals := make([]Propval, count)
	for i := 0; i < count; i++ {
		if vals[i].Var, err = d.ReadValue(); err != nil {
			return nil, err
		}
		if vals[i].Owner, err = d.ReadObjid(); err != nil {
			return nil, err
		}
		if vals[i].Perms, err = d.ReadNum(); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func writePropvals(d *IO, vals []Propval) error {
	if err := d.WriteNum(len(vals)); err != nil {
		return err
	}
	for _, p := range vals {
		if err := d.WriteValue(p.Var); err != nil {
			return err
		}
		if err := d.WriteObjid(p.Owner); err != nil {
			return err
		}
		if err := d.WriteNum(p.Perms); err != nil {
			return err
		}
	}
	return nil
}
