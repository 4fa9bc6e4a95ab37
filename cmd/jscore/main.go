// jscore CLI - runs the object-model walkthrough and inspects heap snapshots
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/jscore/config"
	"github.com/chazu/jscore/gc"
	"github.com/chazu/jscore/object"
	"github.com/chazu/jscore/snapshot"
	"github.com/chazu/jscore/value"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	configDir := flag.String("config", "", "Directory containing jscore.toml (default: search upward from cwd)")
	scenario := flag.Bool("scenario", false, "Run the object-model walkthrough")
	snapshotOut := flag.String("snapshot", "", "Write a heap snapshot after the walkthrough (default from config)")
	inspect := flag.String("inspect", "", "Print a previously written heap snapshot")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jscore [options]\n\n")
		fmt.Fprintf(os.Stderr, "Exercises the jscore value and object model.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  jscore -scenario                     # Run the walkthrough\n")
		fmt.Fprintf(os.Stderr, "  jscore -scenario -snapshot heap.cbor  # Run it and save the heap\n")
		fmt.Fprintf(os.Stderr, "  jscore -inspect heap.cbor            # Print a saved heap\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbosity := cfg.Log.Verbosity
	if *verbose && verbosity < 1 {
		verbosity = 1
	}
	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(verbosity, logPath)

	if *inspect != "" {
		s, err := snapshot.ReadFile(*inspect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := s.Print(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*scenario {
		flag.Usage()
		os.Exit(2)
	}

	h := value.NewHeap(cfg.Heap.InitialCapacity)
	a := object.NewAgent(h, cfg.Agent.MaxDepth)
	collector := gc.New(h, cfg.GC.Threshold)
	collector.SetEnabled(cfg.GC.Enabled)

	if err := runScenario(a, collector, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := *snapshotOut
	if out == "" && cfg.Dir != "" {
		out = cfg.SnapshotPath()
	}
	if out != "" {
		s, err := snapshot.Capture(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := snapshot.WriteFile(out, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote snapshot %s (%d objects) to %s\n", s.ID, len(s.Objects), out)
		}
	}
}

// loadConfig loads jscore.toml from dir, or searches upward from the
// working directory when dir is empty. Without a file the defaults apply.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
		env, err := config.ReadEnvFile(config.EnvFileName)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyEnv(env); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
