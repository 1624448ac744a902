package db

import (
	"log"

	"github.com/mgillis/stunt/types"
)

func isObj(v types.Value) bool {
	_, ok := v.(types.ObjValue)
	return ok
}

func isListOfObjs(v types.Value) bool {
	l, ok := v.(types.ListValue)
	if !ok {
		return false
	}
	for _, e := range l.Elements() {
		if !isObj(e) {
			return false
		}
	}
	return true
}

func isObjOrListOfObjs(v types.Value) bool {
	return isObj(v) || isListOfObjs(v)
}

// validateHierarchies checks the current-layout object graph: field
// type sanity and dangling references (the latter repaired in place),
// cycles through the parents and location closures, and bidirectional
// consistency of both relation pairs. Type-sanity failures are fatal;
// they mean the file was written by something else entirely.
func validateHierarchies(s *Store) bool {
	size := s.LastUsedObjid() + 1
	broken := false

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
		if !isObjOrListOfObjs(o.Parents) {
			log.Printf("VALIDATE: #%d.parents is not an object or list of objects.", oid)
			broken = true
		}
		if !isListOfObjs(o.Children) {
			log.Printf("VALIDATE: #%d.children is not a list of objects.", oid)
			broken = true
		}
		if !isObj(o.Location) {
			log.Printf("VALIDATE: #%d.location is not an object.", oid)
			broken = true
		}
		if !isListOfObjs(o.Contents) {
			log.Printf("VALIDATE: #%d.contents is not a list of objects.", oid)
			broken = true
		}
		if broken {
			continue // no point repairing a file this wrong
		}

		check := func(field *types.Value, name string) {
			if l, ok := (*field).(types.ListValue); ok {
				for _, e := range l.Elements() {
					obj := e.(types.ObjValue)
					if obj.ID() != types.Nothing && s.Find(obj.ID()) == nil {
						log.Printf("VALIDATE: #%d.%s = #%d <invalid> ... removed.",
							oid, name, obj.ID())
						l = l.Remove(obj)
					}
				}
				*field = l
				return
			}
			obj := (*field).(types.ObjValue)
			if obj.ID() != types.Nothing && s.Find(obj.ID()) == nil {
				log.Printf("VALIDATE: #%d.%s = #%d <invalid> ... fixed.",
					oid, name, obj.ID())
				*field = types.NewObj(types.Nothing)
			}
		}
		check(&o.Parents, "parent")
		check(&o.Children, "child")
		check(&o.Location, "location")
		check(&o.Contents, "content")
	}
	if broken { // cannot trust the fields below
		return false
	}

	log.Printf("VALIDATE: Phase 2: Check for cycles ...")
	logOid = progressInterval
	for oid := types.ObjID(0); oid < size; oid++ {
		if oid == logOid {
			logOid += progressInterval
			log.Printf("VALIDATE: Done through #%d ...", oid)
		}
		if s.Find(oid) == nil {
			continue
		}
		if contains(s.Ancestors(oid), oid) {
			log.Printf("VALIDATE: Cycle in parent chain of #%d.", oid)
			broken = true
		}
		if contains(s.AllLocations(oid), oid) {
			log.Printf("VALIDATE: Cycle in location chain of #%d.", oid)
			broken = true
		}
	}
	if broken { // cannot walk the hierarchies below if they loop
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

		check := func(up types.Value, upName string, down func(*Object) types.Value, downName string) {
			self := types.NewObj(oid)
			for _, e := range types.Enlist(up).Elements() {
				obj := e.(types.ObjValue)
				if obj.ID() == types.Nothing {
					continue
				}
				other := s.Find(obj.ID())
				if !types.Enlist(down(other)).Contains(self) {
					log.Printf("VALIDATE: #%d not in its %s's (#%d) %s.",
						oid, upName, other.ID, downName)
					broken = true
					break
				}
			}
		}
		check(o.Location, "location", func(x *Object) types.Value { return x.Contents }, "contents")
		check(o.Contents, "content", func(x *Object) types.Value { return x.Location }, "location")
		check(o.Parents, "parent", func(x *Object) types.Value { return x.Children }, "children")
		check(o.Children, "child", func(x *Object) types.Value { return x.Parents }, "parents")
	}

	log.Printf("VALIDATING the object hierarchies ... finished.")
	return !broken
}

func contains(ids []types.ObjID, id types.ObjID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
