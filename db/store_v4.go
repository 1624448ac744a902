package db

import "github.com/mgillis/stunt/types"

// StoreV4 is the dense object table for the legacy layout. It exists
// only between a legacy load and the upgrade pass; the upgrader is
// the only code that walks both tables at once.
type StoreV4 struct {
	objects []*ObjectV4
}

// NewStoreV4 creates an empty legacy table
func NewStoreV4() *StoreV4 {
	return &StoreV4{}
}

// NewObject appends a fresh legacy object and returns it
func (s *StoreV4) NewObject() *ObjectV4 {
	o := &ObjectV4{ID: types.ObjID(len(s.objects))}
	s.objects = append(s.objects, o)
	return o
}

// NewRecycledObject appends a recycled slot, advancing the id counter
func (s *StoreV4) NewRecycledObject() {
	s.objects = append(s.objects, nil)
}

// Find returns the legacy object with the given id, or nil
func (s *StoreV4) Find(id types.ObjID) *ObjectV4 {
	if id < 0 || int64(id) >= int64(len(s.objects)) {
		return nil
	}
	return s.objects[id]
}

// Valid reports whether id names a live legacy object
func (s *StoreV4) Valid(id types.ObjID) bool {
	return s.Find(id) != nil
}

// LastUsedObjid returns the highest id ever assigned, or -1
func (s *StoreV4) LastUsedObjid() types.ObjID {
	return types.ObjID(len(s.objects)) - 1
}

// FindIndexedVerb resolves a 1-based verb index on a legacy object
func (s *StoreV4) FindIndexedVerb(id types.ObjID, index int) *Verbdef {
	o := s.Find(id)
	if o == nil || index < 1 || index > len(o.Verbdefs) {
		return nil
	}
	return o.Verbdefs[index-1]
}
