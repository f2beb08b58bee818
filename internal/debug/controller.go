// Package debug implements the interactive debugger as a state machine.
// The controller never blocks and performs no I/O: the host asks it at each
// cycle boundary whether to prompt, feeds it parsed commands and carries out
// the returned effects.
package debug

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"rvsim/internal/common"
	"rvsim/internal/cpu"
	"rvsim/internal/idec"
	"rvsim/internal/printers"
)

// Unbounded is the step budget of run mode. It is never consumed.
const Unbounded = math.MaxUint64

// DefaultDumpLen is the byte count of "dump" without a length.
const DefaultDumpLen = 16

// Target is the read-only view of the simulated hart used for inspection.
type Target interface {
	PCValue() uint32
	Reg(idx int) int32
	Registers() [cpu.NumRegs]int32
	MemSize() int
	Peek(addr uint32, n int) (uint32, error)
	DecodeAt(addr uint32) (idec.Instruction, error)
}

// Mode is the controller's scheduling state.
type Mode int

const (
	ModeAwaitingInput Mode = iota
	ModeStepping
	ModeContinuous
)

func (m Mode) String() string {
	switch m {
	case ModeAwaitingInput:
		return "awaiting input"
	case ModeStepping:
		return "stepping"
	case ModeContinuous:
		return "continuous"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Action tells the host what to do after a command.
type Action int

const (
	ActionNone   Action = iota // keep prompting
	ActionResume               // leave the prompt and execute cycles
	ActionReset                // reinitialise the architectural state, keep prompting
	ActionExit                 // terminate the process at once
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionResume:
		return "resume"
	case ActionReset:
		return "reset"
	case ActionExit:
		return "exit"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Effect is the outcome of one command. Err is set when the input was
// rejected; Output then carries the message for the user.
type Effect struct {
	Action Action
	Output string
	Err    error
}

// Gate is the controller's decision before a cycle.
type Gate struct {
	PC         uint32
	Breakpoint bool // PC is a breakpoint; the step budget was dropped
	Prompt     bool // block for commands before executing
}

// Controller holds the debug session state. It performs no I/O; the host
// feeds it commands and cycle boundaries.
type Controller struct {
	breakpoints    map[uint32]struct{}
	budget         uint64
	verbose        bool
	running        bool
	nonInteractive bool
	color          bool
}

// NewController creates a session. A non-interactive session never prompts
// and runs until the program halts.
func NewController(nonInteractive bool) *Controller {
	c := &Controller{
		breakpoints:    make(map[uint32]struct{}),
		running:        true,
		nonInteractive: nonInteractive,
	}
	if nonInteractive {
		c.budget = Unbounded
	}
	return c
}

func (c *Controller) Mode() Mode {
	switch {
	case c.nonInteractive || c.budget == Unbounded:
		return ModeContinuous
	case c.budget > 0:
		return ModeStepping
	}
	return ModeAwaitingInput
}

func (c *Controller) Budget() uint64 { return c.budget }

func (c *Controller) Interactive() bool { return !c.nonInteractive }

func (c *Controller) Verbose() bool { return c.verbose }

func (c *Controller) SetVerbose(on bool) { c.verbose = on }

// SetColor enables ANSI colour in the decode view.
func (c *Controller) SetColor(on bool) { c.color = on }

// Running is false once the program has requested exit.
func (c *Controller) Running() bool { return c.running }

func (c *Controller) Halt() { c.running = false }

func (c *Controller) HasBreakpoint(pc uint32) bool {
	_, ok := c.breakpoints[pc]
	return ok
}

// BeforeCycle is called with the address of the next instruction. A
// breakpoint overrides whatever step budget remains.
func (c *Controller) BeforeCycle(pc uint32) Gate {
	g := Gate{PC: pc}
	if c.HasBreakpoint(pc) {
		c.budget = 0
		g.Breakpoint = true
	}
	g.Prompt = !c.nonInteractive && c.budget == 0
	return g
}

// AfterCycle consumes one unit of a bounded step budget.
func (c *Controller) AfterCycle() {
	if c.budget != Unbounded && c.budget > 0 {
		c.budget--
	}
}

// BreakpointNotice is the message shown when a breakpoint is reached.
func BreakpointNotice(pc uint32) string {
	return fmt.Sprintf("Breakpoint encountered at PC %d", pc)
}

// AddBreakpoint inserts addr and reports whether it was new.
func (c *Controller) AddBreakpoint(addr uint32) bool {
	if c.HasBreakpoint(addr) {
		return false
	}
	c.breakpoints[addr] = struct{}{}
	return true
}

func (c *Controller) RemoveBreakpoint(addr uint32) { delete(c.breakpoints, addr) }

// Breakpoints returns the breakpoint addresses in ascending order.
func (c *Controller) Breakpoints() []uint32 {
	out := make([]uint32, 0, len(c.breakpoints))
	for a := range c.breakpoints {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// Handle applies cmd. Only reset and exit ask the host to act on the
// architectural state; everything else reads t or changes the session.
func (c *Controller) Handle(cmd Command, t Target) Effect {
	switch cmd.Kind {
	case CmdNone:
		return Effect{}

	case CmdRun:
		c.budget = Unbounded
		return Effect{Action: ActionResume}

	case CmdStep:
		n := cmd.Arg(0, 1)
		if n < 0 {
			n = 0
		}
		c.budget = uint64(n)
		return Effect{Action: ActionResume}

	case CmdPC:
		return output("PC: %d\n", t.PCValue())

	case CmdReg:
		if !cmd.HasArg(0) {
			return Effect{Output: printers.FormatRegisters(t.Registers())}
		}
		idx := cmd.Arg(0, 0)
		if idx < 0 || idx >= cpu.NumRegs {
			return rejected("Illegal register index. Legal values are 0-%d\n", cpu.NumRegs-1)
		}
		return output("%s\n", printers.FormatRegister(int(idx), t.Reg(int(idx))))

	case CmdMemByte, CmdMemHalf, CmdMemWord:
		return c.peek(cmd, t)

	case CmdMemDump:
		return c.dump(cmd, t)

	case CmdQuiet:
		c.verbose = false
		return output("Quiet mode on. Will not print anything\n")

	case CmdVerbose:
		c.verbose = true
		return output("Verbose mode on. Will print every instruction\n")

	case CmdReset:
		c.verbose = false
		c.budget = 0
		return Effect{Action: ActionReset, Output: "Simulator state has been reset\n"}

	case CmdBreakAdd:
		addr := cmd.Arg(0, 0)
		if !inRange(addr, 4, t.MemSize()) {
			return illegalAddr(4, t.MemSize())
		}
		if !c.AddBreakpoint(uint32(addr)) {
			return output("A breakpoint is already set at address %d\n", addr)
		}
		return output("Breakpoint added. Type \"r\" to run until the breakpoint\n")

	case CmdBreakRemove:
		addr := cmd.Arg(0, 0)
		if addr >= 0 && addr <= math.MaxUint32 {
			c.RemoveBreakpoint(uint32(addr))
		}
		return output("Breakpoint removed\n")

	case CmdBreakList:
		var sb strings.Builder
		sb.WriteString("The following breakpoints are set:\n")
		for _, a := range c.Breakpoints() {
			inst, err := t.DecodeAt(a)
			if err != nil {
				sb.WriteString(fmt.Sprintf("%3d: (unreadable)\n", a))
				continue
			}
			sb.WriteString(fmt.Sprintf("%3d: (%s)\n", a, inst))
		}
		return Effect{Output: sb.String()}

	case CmdBreakClear:
		clear(c.breakpoints)
		return output("Breakpoints cleared\n")

	case CmdDecode:
		addr := cmd.Arg(0, int64(t.PCValue()))
		if !inRange(addr, 4, t.MemSize()) {
			return illegalAddr(4, t.MemSize())
		}
		inst, err := t.DecodeAt(uint32(addr))
		if err != nil {
			return rejected("%v\n", err)
		}
		return output("%d: %s-type %s\n%s\n", addr, inst.Format(), inst.Op, printers.Inspect(inst, c.color))

	case CmdHelp:
		return Effect{Output: HelpText}

	case CmdExit:
		return Effect{Action: ActionExit}
	}

	return rejected("%s\n", UnknownCommandMsg)
}

func (c *Controller) peek(cmd Command, t Target) Effect {
	var n int
	var format string
	switch cmd.Kind {
	case CmdMemByte:
		n, format = 1, "Mem[%d]=0x%02x\n"
	case CmdMemHalf:
		n, format = 2, "Mem[%d]=0x%04x\n"
	default:
		n, format = 4, "Mem[%d]=0x%08x\n"
	}

	addr := cmd.Arg(0, 0)
	if !inRange(addr, n, t.MemSize()) {
		return illegalAddr(n, t.MemSize())
	}
	v, err := t.Peek(uint32(addr), n)
	if err != nil {
		return rejected("%v\n", err)
	}
	return output(format, addr, v)
}

func (c *Controller) dump(cmd Command, t Target) Effect {
	addr := cmd.Arg(0, 0)
	n := cmd.Arg(1, DefaultDumpLen)
	if n <= 0 || n > int64(t.MemSize()) || !inRange(addr, int(n), t.MemSize()) {
		return rejected("Illegal memory range. Legal values are 0-%d\n", t.MemSize())
	}

	data := make([]byte, n)
	for i := range data {
		b, err := t.Peek(uint32(addr)+uint32(i), 1)
		if err != nil {
			return rejected("%v\n", err)
		}
		data[i] = byte(b)
	}
	return Effect{Output: printers.HexDump(uint32(addr), data)}
}

func inRange(addr int64, n, size int) bool {
	return addr >= 0 && addr+int64(n) <= int64(size)
}

func illegalAddr(n, size int) Effect {
	return rejected("Illegal memory location. Legal values are 0-%d\n", size-n)
}

func output(format string, args ...interface{}) Effect {
	return Effect{Output: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...interface{}) Effect {
	msg := fmt.Sprintf(format, args...)
	return Effect{
		Output: msg,
		Err:    common.NewErrorMsg(common.ErrSevWarn, common.ErrInvalidCommand, strings.TrimSpace(msg)),
	}
}

// HelpText is printed by the help command.
const HelpText = `The following instructions are supported by the simulator
  r, run: Execute the remainder of the program. Will stop if a breakpoint is encountered
  s, step [X]: Step for X instructions. If no X is given, steps for 1 instruction
  pc: Print the current value of the program counter
  reg [X]: Print the contents of register X. If no X is specified, prints the contents of all registers
  memb [X]: Print the value of the byte stored at memory location X
  memh [X]: Print the value of the halfword starting at memory location X
  mem, memw [X]: Prints the value of the word starting at memory location X
  dump X [N]: Print N bytes (default 16) starting at memory location X
  d, decode [X]: Show the decoded instruction at address X, or at the PC if no X is given
  ba, badd [X]: Add a breakpoint at address X
  br, brem [X]: Remove a breakpoint at address X
    If no breakpoint exists at this address, nothing happens
  bl, blist: List all breakpoints
  bc, bclear: Clear all breakpoints
  q, quiet: Toggle quiet mode on
  v, verbose: Toggle verbose mode on
  reset: Reset the state of the simulator. Clears all registers and memory, sets PC=0, sets quiet mode on, sets SP=mem.length. Will not clear breakpoints.
  h, help: Print this help message
  exit: Exit the simulator immediately. No register dump is written
`
