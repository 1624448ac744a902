// Command stunt loads a MOO database, keeps it checkpointed, and
// writes a final dump on shutdown.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgillis/stunt/db"
	"github.com/mgillis/stunt/server"
)

// configFile is set by the --config flag
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stunt <input-db-file> <output-db-file>",
	Short: "Stunt is a MOO server",
	Long: `Stunt loads the input database file, validates and (for legacy
formats) upgrades the object hierarchy, then keeps the world safe on
disk: periodic checkpoints around the output file name, a final dump
on shutdown, and a panic dump if the process is going down hard.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file (default: ./stunt.yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	inputName, dumpName := args[0], args[1]

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	database, err := db.LoadDatabase(inputName)
	if err != nil {
		return fmt.Errorf("cannot load database: %w", err)
	}
	log.Printf("LOADING: %s done, will dump new database on %s", inputName, dumpName)

	history := server.NewCommandHistory(cfg.CommandHistorySize)

	dumper := db.NewDumper(database, dumpName)
	dumper.UnforkedCheckpoints = cfg.UnforkedCheckpoints
	dumper.ResetCommandHistory = history.Reset

	// A panic on the main flow gets one last dump that never touches
	// the canonical snapshot.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC: %v", r)
			dumper.Dump(db.DumpPanic)
			os.Exit(1)
		}
	}()

	dumper.Start(cfg.CheckpointInterval)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Printf("Shutting down on %v ...", sig)

	dumper.Stop()
	if err := dumper.Dump(db.DumpShutdown); err != nil {
		return fmt.Errorf("shutdown dump: %w", err)
	}
	dumper.WaitCheckpointers()
	return nil
}
