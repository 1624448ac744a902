package db

import (
	"log"

	"github.com/mgillis/stunt/types"
)

// upgradeObjects materializes the legacy intrusive chains into the
// current layout, slot by slot, preserving ids. Children come out in
// Child→Sibling walk order, contents in Contents→Next order. Verbdefs,
// propdefs and propvals move by reference; after the pass the legacy
// table no longer owns anything.
//
// Parents is set to the scalar object Var wrapping the legacy parent,
// not a one-element list. Readers and validators accept either form;
// lists only appear once a world actually uses multiple inheritance.
func upgradeObjects(v4 *StoreV4, s *Store) {
	size := v4.LastUsedObjid() + 1

	log.Printf("UPGRADING objects to new structure ...")

	logOid := types.ObjID(progressInterval)
	for oid := types.ObjID(0); oid < size; oid++ {
		if oid == logOid {
			logOid += progressInterval
			log.Printf("UPGRADE: Done through #%d ...", oid)
		}
		o := v4.Find(oid)
		if o == nil {
			s.NewRecycledObject()
			continue
		}

		n := s.NewObject()
		n.Name = o.Name
		n.Flags = o.Flags
		n.Owner = o.Owner

		n.Parents = types.NewObj(o.Parent)

		children := types.NewEmptyList()
		for iter := o.Child; iter != types.Nothing; iter = v4.Find(iter).Sibling {
			children = children.Append(types.NewObj(iter))
		}
		n.Children = children

		n.Location = types.NewObj(o.Location)

		contents := types.NewEmptyList()
		for iter := o.Contents; iter != types.Nothing; iter = v4.Find(iter).Next {
			contents = contents.Append(types.NewObj(iter))
		}
		n.Contents = contents

		n.Verbdefs = o.Verbdefs
		n.Propdefs = o.Propdefs
		n.Propvals = o.Propvals
	}

	// Drop the legacy table's ownership of everything it held.
	v4.objects = nil

	log.Printf("UPGRADING objects to new structure ... finished.")
}
