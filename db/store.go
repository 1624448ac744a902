package db

import (
	"sync"

	"github.com/mgillis/stunt/types"
)

// Store is the in-memory object table for the current layout: a dense
// slice indexed by ObjID, with nil entries for recycled slots. The id
// space has no gaps; recycled ids stay reserved for identifier
// stability.
//
// The server proper is single-threaded, but the checkpointer copies
// the table from another goroutine, so access goes through the lock.
type Store struct {
	mu      sync.RWMutex
	objects []*Object
	users   []types.ObjID
}

// NewStore creates an empty object table
func NewStore() *Store {
	return &Store{}
}

// NewObject appends a fresh object to the table and returns it. The
// new object's id is the next unused id.
func (s *Store) NewObject() *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := newObjectDefaults(types.ObjID(len(s.objects)))
	s.objects = append(s.objects, o)
	return o
}

// NewRecycledObject appends a recycled slot, advancing the id counter
func (s *Store) NewRecycledObject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, nil)
}

// Find returns the object with the given id, or nil if the id is out
// of range or recycled
func (s *Store) Find(id types.ObjID) *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

func (s *Store) find(id types.ObjID) *Object {
	if id < 0 || int64(id) >= int64(len(s.objects)) {
		return nil
	}
	return s.objects[id]
}

// Valid reports whether id names a live object
func (s *Store) Valid(id types.ObjID) bool {
	return s.Find(id) != nil
}

// LastUsedObjid returns the highest id ever assigned, including
// recycled slots, or -1 for an empty table
func (s *Store) LastUsedObjid() types.ObjID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.ObjID(len(s.objects)) - 1
}

// SetAllUsers replaces the user (player) list
func (s *Store) SetAllUsers(users []types.ObjID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
}

// AllUsers returns the user list in persisted order
func (s *Store) AllUsers() []types.ObjID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users
}

// FindIndexedVerb resolves a 1-based verb index on an object, the way
// program records address their verbs. Returns nil if out of range.
func (s *Store) FindIndexedVerb(id types.ObjID, index int) *Verbdef {
	o := s.Find(id)
	if o == nil || index < 1 || index > len(o.Verbdefs) {
		return nil
	}
	return o.Verbdefs[index-1]
}

// Ancestors returns the transitive closure of the parents relation,
// breadth-first. If the hierarchy is cyclic through id, id itself
// appears in the result; the validator relies on that.
func (s *Store) Ancestors(id types.ObjID) []types.ObjID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ObjID
	seen := make(map[types.ObjID]bool)
	var queue []types.ObjID
	if o := s.find(id); o != nil {
		queue = append(queue, o.ParentIDs()...)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if po := s.find(p); po != nil {
			queue = append(queue, po.ParentIDs()...)
		}
	}
	return out
}

// AllLocations returns the transitive closure of the location
// relation. As with Ancestors, a cycle through id puts id in the
// result.
func (s *Store) AllLocations(id types.ObjID) []types.ObjID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ObjID
	seen := make(map[types.ObjID]bool)
	cur := id
	for {
		o := s.find(cur)
		if o == nil {
			break
		}
		loc := o.LocationID()
		if loc == types.Nothing || seen[loc] {
			break
		}
		seen[loc] = true
		out = append(out, loc)
		cur = loc
	}
	return out
}

// Snapshot deep-copies the table, giving the checkpointer a consistent
// world to write while the live one keeps mutating. Programs and
// values are immutable and shared; everything else is copied.
func (s *Store) Snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Store{
		objects: make([]*Object, len(s.objects)),
		users:   append([]types.ObjID(nil), s.users...),
	}
	for i, o := range s.objects {
		if o == nil {
			continue
		}
		c := *o
		c.Verbdefs = make([]*Verbdef, len(o.Verbdefs))
		for j, v := range o.Verbdefs {
			vc := *v
			c.Verbdefs[j] = &vc
		}
		c.Propdefs = append([]Propdef(nil), o.Propdefs...)
		c.Propvals = append([]Propval(nil), o.Propvals...)
		snap.objects[i] = &c
	}
	return snap
}
