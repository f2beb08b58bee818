// Package sim runs one simulation from configuration to register dump.
package sim

import (
	"errors"
	"io"
	"os"

	"rvsim/internal/common"
	"rvsim/internal/config"
	"rvsim/internal/cpu"
	"rvsim/internal/debug"
	"rvsim/internal/memacc"
	"rvsim/internal/printers"
	"rvsim/internal/shell"
)

// Welcome is printed before the first prompt of an interactive session.
const Welcome = `Welcome to the RISC-V ISA Simulator. For help, type "help"`

// Config is the run configuration plus the process streams. Nil streams
// default to the process's own.
type Config struct {
	config.Config

	In        io.Reader
	Out       io.Writer
	LogWriter io.Writer
	Exit      func(int)
}

// Run loads the program image and executes it under the debugger until the
// exit syscall, then reports and writes the register dump. A memory fault is
// reported and returned without writing the dump.
func Run(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	in, out := cfg.In, cfg.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	var log common.Logger
	if cfg.LogWriter != nil {
		log = common.NewLogrusLoggerWithWriter(cfg.LogWriter, cfg.LogLevel)
	} else {
		log = common.NewLogrusLogger(cfg.LogLevel)
	}

	con := printers.NewConsole(out, cfg.Color)
	con.SetMessageLogger(log)

	sh := shell.New(in, con)
	sh.SetLogger(log)
	if cfg.Exit != nil {
		sh.SetExitFunc(cfg.Exit)
	}

	// 1. Resolve and load the program image
	path := cfg.ImagePath
	switch {
	case path != "":
		if found, ok := memacc.FindImage(path); ok {
			path = found
		}
	case cfg.NonInteractive:
		return common.NewErrorMsg(common.ErrSevError, common.ErrImageNotFound, "no program image given")
	default:
		p, err := sh.PromptImage()
		if err != nil {
			return err
		}
		path = p
	}

	mem := memacc.NewImage(cfg.MemorySize)
	res := memacc.LoadFile(path, mem)
	if !res.OK() {
		err := loadError(res)
		log.Error(err)
		return err
	}
	log.WithFields(common.Fields{"path": res.Path, "bytes": res.Size}).Info("image loaded")

	// 2. Build the hart and the debug session
	st := cpu.NewState(mem)
	eng := cpu.NewEngine(log)
	ctl := debug.NewController(cfg.NonInteractive)
	ctl.SetVerbose(cfg.Verbose)
	ctl.SetColor(con.Colored())
	for _, bp := range cfg.Breakpoints {
		ctl.AddBreakpoint(bp)
	}
	sh.Echo().ShowPC(cfg.ShowPC)
	if cfg.Stats {
		sh.Echo().SetCollectStats()
	}

	if ctl.Interactive() {
		con.Println(Welcome)
	}

	// 3. Execute
	if err := sh.Run(st, eng, ctl); err != nil {
		var cerr *common.Error
		if errors.As(err, &cerr) {
			con.Fault(cerr.Error())
		}
		return err
	}

	// 4. Report
	log.WithFields(common.Fields{"retired": eng.Retired()}).Info("program exited")
	if ctl.Interactive() {
		con.Println("\nExecution has finished. Register dump:")
		con.Print(printers.FormatRegisters(st.Registers()))
	}
	if cfg.Stats {
		sh.Echo().PrintStats(con.Writer())
	}
	return printers.WriteRegDumpFile(cfg.RegDumpPath, st.Registers())
}

func loadError(res memacc.LoadResult) error {
	code := common.ErrImageRead
	switch res.Status {
	case memacc.LoadNotFound:
		code = common.ErrImageNotFound
	case memacc.LoadTooLarge:
		code = common.ErrImageTooLarge
	}
	msg := res.Path
	if res.Err != nil {
		msg = res.Path + ": " + res.Err.Error()
	}
	return common.NewErrorMsg(common.ErrSevError, code, msg)
}
