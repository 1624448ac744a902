package db

import (
	"fmt"
	"log"
	"os"

	"github.com/mgillis/stunt/types"
)

// Database is one loaded world: the object table plus the sections
// that ride along in the same file.
type Database struct {
	Store        *Store
	InputVersion Version
	Tasks        *TaskQueue
	Connections  *ConnectionList
}

// NewDatabase returns an empty world, useful as a dump source when
// nothing was loaded
func NewDatabase() *Database {
	return &Database{
		Store:       NewStore(),
		Tasks:       &TaskQueue{},
		Connections: &ConnectionList{},
	}
}

// LoadDatabase reads a database file from disk
func LoadDatabase(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer f.Close()

	log.Printf("LOADING: %s", path)
	database, err := ReadDBFile(NewReader(f))
	if err != nil {
		return nil, err
	}
	log.Printf("LOADING: %s done", path)
	return database, nil
}

// ReadDBFile reads a complete database from the codec stream: header,
// counts, user list, objects, hierarchy validation, verb programs,
// task queue, connections, and — for legacy inputs — the upgrade to
// the current layout.
func ReadDBFile(d *IO) (*Database, error) {
	header, err := d.ReadLine()
	if err != nil {
		return nil, err
	}
	var version int
	if _, err := fmt.Sscanf(header, headerFormat, &version); err != nil {
		return nil, fmt.Errorf("%w: bad database header %q", ErrIO, header)
	}
	if !Version(version).Valid() {
		return nil, fmt.Errorf("unknown DB version number: %d", version)
	}
	d.inputVersion = Version(version)
	legacy := !d.inputVersion.HasListRelations()

	nobjs, err := d.ReadNum()
	if err != nil {
		return nil, fmt.Errorf("bad header: %w", err)
	}
	nprogs, err := d.ReadNum()
	if err != nil {
		return nil, fmt.Errorf("bad header: %w", err)
	}
	if _, err := d.ReadNum(); err != nil { // historical dummy count
		return nil, fmt.Errorf("bad header: %w", err)
	}
	nusers, err := d.ReadNum()
	if err != nil {
		return nil, fmt.Errorf("bad header: %w", err)
	}
	if nobjs < 0 || nprogs < 0 || nusers < 0 {
		return nil, fmt.Errorf("%w: bad section counts", ErrIO)
	}

	users := make([]types.ObjID, nusers)
	for i := 0; i < nusers; i++ {
		if users[i], err = d.ReadObjid(); err != nil {
			return nil, fmt.Errorf("user list: %w", err)
		}
	}

	database := NewDatabase()
	database.InputVersion = d.inputVersion
	database.Store.SetAllUsers(users)

	var v4 *StoreV4
	if legacy {
		v4 = NewStoreV4()
	}

	log.Printf("LOADING: Reading %d objects ...", nobjs)
	for i := 1; i <= nobjs; i++ {
		if legacy {
			err = readObjectV4(d, v4)
		} else {
			err = readObject(d, database.Store)
		}
		if err != nil {
			return nil, fmt.Errorf("bad object #%d: %w", i-1, err)
		}
		if i%progressInterval == 0 || i == nobjs {
			log.Printf("LOADING: Done reading %d objects ...", i)
		}
	}

	if legacy {
		if !validateHierarchiesV4(v4) {
			return nil, fmt.Errorf("errors in object hierarchies")
		}
	} else {
		if !validateHierarchies(database.Store) {
			return nil, fmt.Errorf("errors in object hierarchies")
		}
	}

	log.Printf("LOADING: Reading %d MOO verb programs ...", nprogs)
	for i := 1; i <= nprogs; i++ {
		var oid, vnum int
		if err := d.Scanf("#%d:%d", &oid, &vnum); err != nil {
			return nil, fmt.Errorf("bad program header, i = %d: %w", i, err)
		}
		var v *Verbdef
		if legacy {
			if !v4.Valid(types.ObjID(oid)) {
				return nil, fmt.Errorf("verb for non-existent object: #%d:%d", oid, vnum)
			}
			v = v4.FindIndexedVerb(types.ObjID(oid), vnum+1) // DB file is 0-based
		} else {
			if !database.Store.Valid(types.ObjID(oid)) {
				return nil, fmt.Errorf("verb for non-existent object: #%d:%d", oid, vnum)
			}
			v = database.Store.FindIndexedVerb(types.ObjID(oid), vnum+1)
		}
		if v == nil {
			return nil, fmt.Errorf("unknown verb index: #%d:%d", oid, vnum)
		}
		program, err := readProgram(d)
		if err != nil {
			return nil, fmt.Errorf("unparsable program #%d:%d: %w", oid, vnum, err)
		}
		v.Program = program
		if i%5000 == 0 || i == nprogs {
			log.Printf("LOADING: Done reading %d verb programs ...", i)
		}
	}

	log.Printf("LOADING: Reading forked and suspended tasks ...")
	if database.Tasks, err = readTaskQueue(d); err != nil {
		return nil, fmt.Errorf("can't read task queue: %w", err)
	}

	log.Printf("LOADING: Reading list of formerly active connections ...")
	if database.Connections, err = readActiveConnections(d); err != nil {
		return nil, fmt.Errorf("can't read active connections: %w", err)
	}

	if legacy {
		upgradeObjects(v4, database.Store)
	}

	return database, nil
}
