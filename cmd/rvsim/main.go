package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"rvsim/internal/config"
	"rvsim/internal/sim"
)

// parseArgs builds the run configuration: defaults, then the -config file,
// then any flags given, then a positional image name when -image is absent.
func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to an INI configuration file")
	image := fs.String("image", "", "Program image to load at address 0 (the .bin extension may be omitted)")
	memSize := fs.String("mem", "", "Memory size in bytes, decimal or 0x hex")
	regdump := fs.String("regdump", "", "Register dump written when the program exits")
	batch := fs.Bool("batch", false, "Run to completion without prompting")
	verbose := fs.Bool("v", false, "Print every executed instruction")
	showPC := fs.Bool("pc", false, "Prefix verbose output with the instruction address")
	breaks := fs.String("break", "", "Comma separated breakpoint addresses")
	logLevel := fs.String("log", "", "Log level: debug, info, warning or error")
	color := fs.String("color", "", "Colour output: auto, always or never")
	stats := fs.Bool("stats", false, "Print per-instruction counts when the program exits")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	// Flags given on the command line override the file.
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "image":
			cfg.ImagePath = *image
		case "mem":
			err = cfg.SetMemorySize(*memSize)
		case "regdump":
			cfg.RegDumpPath = *regdump
		case "batch":
			cfg.NonInteractive = *batch
		case "v":
			cfg.Verbose = *verbose
		case "pc":
			cfg.ShowPC = *showPC
		case "break":
			err = cfg.SetBreakpoints(*breaks)
		case "log":
			err = cfg.SetLogLevel(*logLevel)
		case "color":
			err = cfg.SetColor(*color)
		case "stats":
			cfg.Stats = *stats
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	if err != nil {
		return cfg, err
	}
	if *image == "" && fs.NArg() > 0 {
		cfg.ImagePath = fs.Arg(0)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "RISC-V Simulator : Error: %v\n", err)
		os.Exit(2)
	}

	if err := sim.Run(sim.Config{Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
