package db

import (
	"log"

	"github.com/mgillis/stunt/types"
)

// progressInterval is how often the long full-table scans log progress
const progressInterval = 10000

// validateHierarchiesV4 checks the legacy object graph in three
// phases: dangling references (repaired in place), cycles through the
// intrusive chains, and bidirectional chain consistency. It returns
// false if the database is too broken to load; repairs alone never
// cause a false return.
func validateHierarchiesV4(s *StoreV4) bool {
	size := s.LastUsedObjid() + 1
	broken := false
	fixedNexts := 0

	log.Printf("VALIDATING the object hierarchies ...")

	log.Printf("VALIDATE: Phase 1: Check for invalid objects ...")
	logOid := types.ObjID(progressInterval)
	for oid := types.ObjID(0); oid < size; oid++ {
		if oid == logOid {
			logOid += progressInterval
			log.Printf("VALIDATE: Done through #%d ...", oid)
		}
		o := s.Find(oid)
		if o == nil {
			continue
		}
		if o.Location == types.Nothing && o.Next != types.Nothing {
			o.Next = types.Nothing
			fixedNexts++
		}
		check := func(field *types.ObjID, name string) {
			if *field != types.Nothing && !s.Valid(*field) {
				log.Printf("VALIDATE: #%d.%s = #%d <invalid> ... fixed.", oid, name, *field)
				*field = types.Nothing
			}
		}
		check(&o.Parent, "parent")
		check(&o.Child, "child")
		check(&o.Sibling, "sibling")
		check(&o.Location, "location")
		check(&o.Contents, "contents")
		check(&o.Next, "next")
	}
	if fixedNexts != 0 {
		log.Printf("VALIDATE: Fixed %d should-be-null next pointer(s) ...", fixedNexts)
	}

	log.Printf("VALIDATE: Phase 2: Check for cycles ...")
	logOid = progressInterval
	for oid := types.ObjID(0); oid < size; oid++ {
		if oid == logOid {
			logOid += progressInterval
			log.Printf("VALIDATE: Done through #%d ...", oid)
		}
		o := s.Find(oid)
		if o == nil {
			continue
		}
		// A chain longer than the table is necessarily cyclic.
		checkChain := func(start types.ObjID, next func(*ObjectV4) types.ObjID, name string) {
			count := types.ObjID(0)
			for cur := start; cur != types.Nothing; cur = next(s.Find(cur)) {
				if count++; count > size {
					log.Printf("VALIDATE: Cycle in `%s' chain of #%d", name, oid)
					broken = true
					break
				}
			}
		}
		checkChain(o.Parent, func(x *ObjectV4) types.ObjID { return x.Parent }, "parent")
		checkChain(o.Child, func(x *ObjectV4) types.ObjID { return x.Sibling }, "child")
		checkChain(o.Location, func(x *ObjectV4) types.ObjID { return x.Location }, "location")
		checkChain(o.Contents, func(x *ObjectV4) types.ObjID { return x.Next }, "contents")
	}
	if broken { // cannot walk the chains below if they loop
		return false
	}

	log.Printf("VALIDATE: Phase 3: Check for inconsistencies ...")
	logOid = progressInterval
	for oid := types.ObjID(0); oid < size; oid++ {
		if oid == logOid {
			logOid += progressInterval
			log.Printf("VALIDATE: Done through #%d ...", oid)
		}
		o := s.Find(oid)
		if o == nil {
			continue
		}

		// Is oid on its parent's child chain (and its location's
		// contents chain)?
		checkUp := func(up types.ObjID, upName string, down types.ObjID, downName string,
			across func(*ObjectV4) types.ObjID) {
			if up == types.Nothing {
				return
			}
			for cur := down; cur != types.Nothing; cur = across(s.Find(cur)) {
				if cur == oid {
					return
				}
			}
			log.Printf("VALIDATE: #%d not in %s (#%d)'s %s list.", oid, upName, up, downName)
			broken = true
		}
		if o.Parent != types.Nothing {
			checkUp(o.Parent, "parent", s.Find(o.Parent).Child, "child",
				func(x *ObjectV4) types.ObjID { return x.Sibling })
		}
		if o.Location != types.Nothing {
			checkUp(o.Location, "location", s.Find(o.Location).Contents, "contents",
				func(x *ObjectV4) types.ObjID { return x.Next })
		}

		// Does everything on oid's down chains point back at oid?
		checkDown := func(down types.ObjID, downName string,
			up func(*ObjectV4) types.ObjID, across func(*ObjectV4) types.ObjID) {
			for cur := down; cur != types.Nothing; cur = across(s.Find(cur)) {
				if up(s.Find(cur)) != oid {
					log.Printf("VALIDATE: #%d erroneously on #%d's %s list.", cur, oid, downName)
					broken = true
				}
			}
		}
		checkDown(o.Child, "child",
			func(x *ObjectV4) types.ObjID { return x.Parent },
			func(x *ObjectV4) types.ObjID { return x.Sibling })
		checkDown(o.Contents, "contents",
			func(x *ObjectV4) types.ObjID { return x.Location },
			func(x *ObjectV4) types.ObjID { return x.Next })
	}

	log.Printf("VALIDATING the object hierarchies ... finished.")
	return !broken
}
