package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// DumpReason indicates why a database dump is being performed
type DumpReason int

const (
	DumpShutdown   DumpReason = iota // server is shutting down
	DumpCheckpoint                   // periodic checkpoint
	DumpPanic                        // emergency dump
)

func (r DumpReason) String() string {
	switch r {
	case DumpShutdown:
		return "DUMPING"
	case DumpCheckpoint:
		return "CHECKPOINTING"
	case DumpPanic:
		return "PANIC-DUMPING"
	default:
		return "DUMPING"
	}
}

// Dumper writes snapshots of a live database around a canonical dump
// file name. Each attempt writes generation-named temp file
// <name>.#<G>#, fsyncs it, and renames it over the canonical name;
// panic dumps go to <name>.PANIC and never touch the canonical file.
// The generation counter increases for every attempt, so a crashed
// dump leaves a uniquely named orphan that the next dump removes
// before writing.
type Dumper struct {
	mu         sync.Mutex
	database   *Database
	dumpName   string
	generation int

	// UnforkedCheckpoints makes checkpoint dumps write in the calling
	// flow instead of handing a snapshot to the checkpointer.
	UnforkedCheckpoints bool

	// ResetCommandHistory, when set, is called after a checkpoint has
	// been handed off (or, for unforked builds, on every dump).
	ResetCommandHistory func()

	// OnCheckpointerExit receives the checkpointer's exit status:
	// 0 on success, 1 on failure.
	OnCheckpointerExit func(status int)

	checkpointers sync.WaitGroup

	retryInterval time.Duration
	sleep         func(time.Duration)
	create        func(string) (*os.File, error)
	writeDB       func(*IO, *Database, string) error

	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewDumper creates a dumper around the canonical dump file name
func NewDumper(database *Database, dumpName string) *Dumper {
	return &Dumper{
		database:      database,
		dumpName:      dumpName,
		retryInterval: 60 * time.Second,
		sleep:         time.Sleep,
		create:        os.Create,
		writeDB:       WriteDBFile,
	}
}

// Generation returns the current dump generation counter
func (dm *Dumper) Generation() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.generation
}

// Dump writes a snapshot for the given reason.
//
// A checkpoint that fails is abandoned: the server stays up, the prior
// canonical snapshot stays in place, and the error comes back to the
// caller. A shutdown or panic dump that fails mid-write retries
// forever on a 60-second cadence — losing the final dump silently
// would be worse than a stalled shutdown, so the loop is the
// operator-attention signal. Open and rename failures never retry.
func (dm *Dumper) Dump(reason DumpReason) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for {
		// Remove the previous checkpoint's temp file.
		os.Remove(fmt.Sprintf("%s.#%d#", dm.dumpName, dm.generation))

		var tempName string
		if reason == DumpPanic {
			tempName = dm.dumpName + ".PANIC"
		} else {
			dm.generation++
			tempName = fmt.Sprintf("%s.#%d#", dm.dumpName, dm.generation)
		}

		log.Printf("%s on %s ...", reason, tempName)

		if reason == DumpCheckpoint && !dm.UnforkedCheckpoints {
			// Hand a consistent copy to the checkpointer and return
			// at once; the main loop never waits on the write.
			snapshot := dm.database.Snapshot()
			if dm.ResetCommandHistory != nil {
				dm.ResetCommandHistory()
			}
			dm.checkpointers.Add(1)
			go dm.checkpointer(snapshot, tempName, reason)
			return nil
		}
		if dm.UnforkedCheckpoints && dm.ResetCommandHistory != nil {
			dm.ResetCommandHistory()
		}

		err := dm.writeSnapshot(dm.database, tempName, reason)
		if err == nil {
			return nil
		}
		if reason == DumpCheckpoint {
			log.Printf("Abandoning checkpoint attempt ...")
			return err
		}
		if !errors.Is(err, ErrIO) {
			return err // open or rename failure: retrying won't help
		}
		log.Printf("Waiting %v and retrying dump ...", dm.retryInterval)
		dm.sleep(dm.retryInterval)
	}
}

// checkpointer is the background snapshot writer
func (dm *Dumper) checkpointer(snapshot *Database, tempName string, reason DumpReason) {
	defer dm.checkpointers.Done()

	status := 0
	if err := dm.writeSnapshot(snapshot, tempName, reason); err != nil {
		log.Printf("Abandoning checkpoint attempt ...")
		status = 1
	}
	if dm.OnCheckpointerExit != nil {
		dm.OnCheckpointerExit(status)
	}
}

// WaitCheckpointers blocks until every handed-off checkpoint write has
// finished. Called before process exit.
func (dm *Dumper) WaitCheckpointers() {
	dm.checkpointers.Wait()
}

// writeSnapshot performs one complete dump attempt: open, write,
// flush, fsync, close, and — except for panics — replace the
// canonical file. The fsync happens before the old snapshot is
// unlinked; that ordering is the crash-safety contract.
func (dm *Dumper) writeSnapshot(database *Database, tempName string, reason DumpReason) error {
	f, err := dm.create(tempName)
	if err != nil {
		log.Printf("Opening temporary dump file: %v", err)
		return err
	}

	d := NewWriter(f)
	if err := dm.writeDB(d, database, reason.String()); err != nil {
		log.Printf("Trying to dump database: %v", err)
		f.Close()
		os.Remove(tempName)
		return err
	}
	if err := f.Sync(); err != nil {
		log.Printf("Syncing temporary dump file: %v", err)
		f.Close()
		os.Remove(tempName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	log.Printf("%s on %s finished", reason, tempName)

	if reason != DumpPanic {
		os.Remove(dm.dumpName)
		if err := os.Rename(tempName, dm.dumpName); err != nil {
			log.Printf("Renaming temporary dump file: %v", err)
			return err
		}
	}
	return nil
}

// Snapshot deep-copies the world for the checkpointer. The task queue
// and connection list never change after load, so they are shared.
func (db *Database) Snapshot() *Database {
	return &Database{
		Store:        db.Store.Snapshot(),
		InputVersion: db.InputVersion,
		Tasks:        db.Tasks,
		Connections:  db.Connections,
	}
}

// DiskSize returns the size in bytes of the last materialized
// snapshot: the canonical dump if one has been written, otherwise the
// input file. Returns -1 if neither can be measured.
func (dm *Dumper) DiskSize(inputName string) int64 {
	dm.mu.Lock()
	generation := dm.generation
	dm.mu.Unlock()

	if generation > 0 {
		if st, err := os.Stat(dm.dumpName); err == nil {
			return st.Size()
		}
	}
	if st, err := os.Stat(inputName); err == nil {
		return st.Size()
	}
	return -1
}

// Start begins periodic checkpointing in a background goroutine
func (dm *Dumper) Start(interval time.Duration) {
	if interval <= 0 {
		return // checkpointing disabled
	}
	dm.interval = interval
	dm.stopChan = make(chan struct{})
	dm.doneChan = make(chan struct{})
	go dm.checkpointLoop()
}

// Stop stops the checkpoint loop and waits for it to finish
func (dm *Dumper) Stop() {
	if dm.interval <= 0 {
		return
	}
	close(dm.stopChan)
	<-dm.doneChan
}

// checkpointLoop runs periodic checkpoints
func (dm *Dumper) checkpointLoop() {
	defer close(dm.doneChan)
	ticker := time.NewTicker(dm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-dm.stopChan:
			return
		case <-ticker.C:
			if err := dm.Dump(DumpCheckpoint); err != nil {
				log.Printf("Checkpoint error: %v", err)
			}
		}
	}
}
