// Package shell is the blocking console around the debug controller. It
// owns line input, the prompt and the cycle loop; all decisions are made by
// debug.Controller.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rvsim/internal/common"
	"rvsim/internal/cpu"
	"rvsim/internal/debug"
	"rvsim/internal/memacc"
	"rvsim/internal/printers"
)

// Prompt is printed whenever the shell blocks for a command.
const Prompt = "> "

// ErrExit is returned by Run and PromptImage after the exit function was
// called and returned, which only happens when it has been replaced.
var ErrExit = errors.New("shell: exit requested")

// Shell reads commands from an input stream and drives one simulation.
type Shell struct {
	in   *bufio.Scanner
	con  *printers.Console
	echo *printers.InstPrinter
	log  common.Logger
	exit func(int)
}

// New creates a shell reading lines from in and printing to con.
func New(in io.Reader, con *printers.Console) *Shell {
	return &Shell{
		in:   bufio.NewScanner(in),
		con:  con,
		echo: printers.NewInstPrinter(con.Writer()),
		log:  common.NewNoOpLogger(),
		exit: os.Exit,
	}
}

// SetExitFunc replaces os.Exit for the exit command.
func (s *Shell) SetExitFunc(fn func(int)) { s.exit = fn }

func (s *Shell) SetLogger(log common.Logger) {
	if log != nil {
		s.log = log
	}
}

// Echo returns the printer used for verbose instruction output.
func (s *Shell) Echo() *printers.InstPrinter { return s.echo }

// Run executes cycles until the program halts through the exit syscall.
// A memory fault is returned as is. The exit command, or end of input while
// waiting for a command, terminates through the exit function without
// returning to the caller.
func (s *Shell) Run(st *cpu.State, eng *cpu.Engine, ctl *debug.Controller) error {
	for ctl.Running() {
		g := ctl.BeforeCycle(st.PC)
		if g.Breakpoint {
			s.con.Notice(debug.BreakpointNotice(g.PC))
		}
		if g.Prompt {
			if err := s.prompt(st, ctl); err != nil {
				return err
			}
		}

		res, err := eng.Step(st)
		if err != nil {
			return err
		}
		if res.Warning != nil {
			s.con.Warn(res.Warning.Message)
		}
		s.echo.SetMute(!ctl.Verbose())
		s.echo.InstructionIn(res.PC, res.Inst)

		if res.Halted {
			ctl.Halt()
		}
		ctl.AfterCycle()
	}
	return nil
}

func (s *Shell) prompt(st *cpu.State, ctl *debug.Controller) error {
	for {
		s.con.Print(Prompt)
		line, ok := s.readLine()
		if !ok {
			if err := s.in.Err(); err != nil {
				s.log.Error(err)
			}
			return s.exitNow("end of input")
		}

		cmd, err := debug.ParseCommand(line)
		if err != nil {
			s.con.Warn(message(err))
			continue
		}

		eff := ctl.Handle(cmd, st)
		if eff.Action == debug.ActionReset {
			st.Reset()
		}
		switch {
		case eff.Err != nil:
			s.con.Warn(strings.TrimSuffix(eff.Output, "\n"))
		case eff.Output != "":
			s.con.Print(eff.Output)
		}

		switch eff.Action {
		case debug.ActionResume:
			return nil
		case debug.ActionExit:
			return s.exitNow("exit command")
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) exitNow(reason string) error {
	s.log.WithFields(common.Fields{"reason": reason}).Info("terminating without register dump")
	s.exit(0)
	return ErrExit
}

// PromptImage asks for a program name until name or name.bin exists. Typing
// exit terminates through the exit function.
func (s *Shell) PromptImage() (string, error) {
	cwd, _ := os.Getwd()
	s.con.Printf("Input name of test (without extension)\nLooking for files in %s\n", cwd)
	for {
		s.con.Print(Prompt)
		line, ok := s.readLine()
		if !ok {
			return "", s.exitNow("end of input")
		}
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if name == "exit" {
			s.con.Println("Exiting")
			return "", s.exitNow("exit command")
		}
		if path, found := memacc.FindImage(name); found {
			return path, nil
		}
		abs, err := filepath.Abs(name + memacc.ImageExt)
		if err != nil {
			abs = name
		}
		s.con.Printf("File %s does not exist. Please try again, or type \"exit\" to quit\n", abs)
	}
}

func message(err error) string {
	var cerr *common.Error
	if errors.As(err, &cerr) && cerr.Message != "" {
		return cerr.Message
	}
	return fmt.Sprint(err)
}
