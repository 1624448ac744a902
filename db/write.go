package db

import (
	"log"

	"github.com/mgillis/stunt/types"
)

// WriteDBFile writes a complete database to the codec stream in the
// current format: header, counts, user list, objects, verb programs,
// task queue, connections. Any stream failure surfaces as ErrIO and
// stops the write immediately; the dump orchestrator decides what to
// do with the half-written file.
func WriteDBFile(d *IO, database *Database, reason string) error {
	s := database.Store
	maxOid := s.LastUsedObjid()

	nprogs := 0
	for oid := types.ObjID(0); oid <= maxOid; oid++ {
		if o := s.Find(oid); o != nil {
			for _, v := range o.Verbdefs {
				if v.Program != nil {
					nprogs++
				}
			}
		}
	}

	users := s.AllUsers()

	if err := d.Printf(headerFormat+"\n", int(CurrentVersion)); err != nil {
		return err
	}
	if err := d.Printf("%d\n%d\n%d\n%d\n", maxOid+1, nprogs, 0, len(users)); err != nil {
		return err
	}
	for _, u := range users {
		if err := d.WriteObjid(u); err != nil {
			return err
		}
	}

	log.Printf("%s: Writing %d objects ...", reason, maxOid+1)
	for oid := types.ObjID(0); oid <= maxOid; oid++ {
		if err := writeObject(d, s, oid); err != nil {
			return err
		}
		if (oid+1)%progressInterval == 0 || oid == maxOid {
			log.Printf("%s: Done writing %d objects ...", reason, oid+1)
		}
	}

	log.Printf("%s: Writing %d MOO verb programs ...", reason, nprogs)
	written := 0
	for oid := types.ObjID(0); oid <= maxOid; oid++ {
		o := s.Find(oid)
		if o == nil {
			continue
		}
		for vcount, v := range o.Verbdefs {
			if v.Program == nil {
				continue
			}
			if err := d.Printf("#%d:%d\n", oid, vcount); err != nil {
				return err
			}
			if err := v.Program.write(d); err != nil {
				return err
			}
			if written++; written%5000 == 0 || written == nprogs {
				log.Printf("%s: Done writing %d verb programs ...", reason, written)
			}
		}
	}

	log.Printf("%s: Writing forked and suspended tasks ...", reason)
	if err := database.Tasks.write(d); err != nil {
		return err
	}

	log.Printf("%s: Writing list of formerly active connections ...", reason)
	if err := database.Connections.write(d); err != nil {
		return err
	}

	return d.Flush()
}
