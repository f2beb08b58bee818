package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rvsim/internal/asm"
	"rvsim/internal/common"
	"rvsim/internal/cpu"
	"rvsim/internal/memacc"
)

// sumLoop adds 0..99 into a1. The loop body starts at address 12.
var sumLoop = asm.Assemble(
	asm.Addi(asm.T1, asm.Zero, 100),
	asm.Addi(asm.T0, asm.Zero, 0),
	asm.Addi(asm.A1, asm.Zero, 0),
	asm.Add(asm.A1, asm.A1, asm.T0),
	asm.Addi(asm.T0, asm.T0, 1),
	asm.Bne(asm.T0, asm.T1, -8),
	asm.Exit(),
)

func newTarget(t *testing.T, size int) *cpu.State {
	t.Helper()
	mem := memacc.NewImage(size)
	res := memacc.LoadReader(bytes.NewReader(sumLoop.Bytes()), mem)
	require.True(t, res.OK(), "load: %v", res.Err)
	return cpu.NewState(mem)
}

type trace struct {
	prompts []uint32
	hits    []uint32
	exited  bool
}

// drive runs the cycle loop the way the shell does, answering each prompt
// with the next scripted line.
func drive(t *testing.T, c *Controller, s *cpu.State, script []string) trace {
	t.Helper()
	var tr trace
	e := cpu.NewEngine(nil)

	for c.Running() {
		g := c.BeforeCycle(s.PC)
		if g.Breakpoint {
			tr.hits = append(tr.hits, g.PC)
		}
		if g.Prompt {
			tr.prompts = append(tr.prompts, g.PC)
		prompt:
			for {
				require.NotEmpty(t, script, "script exhausted at pc %d", s.PC)
				cmd, err := ParseCommand(script[0])
				script = script[1:]
				require.NoError(t, err)
				switch eff := c.Handle(cmd, s); eff.Action {
				case ActionResume:
					break prompt
				case ActionReset:
					s.Reset()
				case ActionExit:
					tr.exited = true
					return tr
				}
			}
		}

		res, err := e.Step(s)
		require.NoError(t, err)
		if res.Halted {
			c.Halt()
		}
		c.AfterCycle()
	}
	require.Empty(t, script, "unused script lines")
	return tr
}

func TestBreakpointThenStep(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	tr := drive(t, c, s, []string{"ba 12", "r", "s", "bc", "r"})

	require.Equal(t, []uint32{0, 12, 16}, tr.prompts)
	require.Equal(t, []uint32{12}, tr.hits)
	require.Equal(t, int32(0x1356), s.Reg(int(asm.A1)))
	require.False(t, c.Running())
}

func TestBreakpointInterruptsMultiStep(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	tr := drive(t, c, s, []string{"ba 12", "s 100", "br 12", "r"})

	require.Equal(t, []uint32{0, 12}, tr.prompts)
	require.Equal(t, []uint32{12}, tr.hits)
	require.Equal(t, int32(0x1356), s.Reg(int(asm.A1)))
}

func TestBreakpointHitEveryIteration(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	script := []string{"ba 16", "r"}
	for i := 0; i < 100; i++ {
		script = append(script, "r")
	}
	tr := drive(t, c, s, script)

	require.Len(t, tr.hits, 100)
	require.Len(t, tr.prompts, 101)
}

func TestStepCounts(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	tr := drive(t, c, s, []string{"s 2", "s", "s 0", "pc", "r"})

	require.Equal(t, []uint32{0, 8, 12, 16}, tr.prompts)
}

func TestNonInteractiveNeverPrompts(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(true)
	c.AddBreakpoint(12)

	require.Equal(t, ModeContinuous, c.Mode())
	tr := drive(t, c, s, nil)

	require.Empty(t, tr.prompts)
	require.Len(t, tr.hits, 100)
	require.Equal(t, int32(0x1356), s.Reg(int(asm.A1)))
}

func TestExitStopsImmediately(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	tr := drive(t, c, s, []string{"s 3", "exit"})

	require.True(t, tr.exited)
	require.Equal(t, uint32(12), s.PC)
	require.True(t, c.Running(), "exit is not the ECALL halt")
}

func TestResetKeepsBreakpoints(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	eff := c.Handle(Command{Kind: CmdBreakAdd, Args: []int64{12}}, s)
	require.NoError(t, eff.Err)
	c.SetVerbose(true)
	s.PC = 20
	s.SetReg(5, 7)

	eff = c.Handle(Command{Kind: CmdReset}, s)
	require.Equal(t, ActionReset, eff.Action)
	require.Equal(t, "Simulator state has been reset\n", eff.Output)
	require.False(t, c.Verbose())
	require.Equal(t, []uint32{12}, c.Breakpoints())
}

func TestModes(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)
	require.Equal(t, ModeAwaitingInput, c.Mode())
	require.True(t, c.Interactive())

	c.Handle(Command{Kind: CmdStep, Args: []int64{3}}, s)
	require.Equal(t, ModeStepping, c.Mode())
	require.Equal(t, uint64(3), c.Budget())
	c.AfterCycle()
	require.Equal(t, uint64(2), c.Budget())

	c.Handle(Command{Kind: CmdRun}, s)
	require.Equal(t, ModeContinuous, c.Mode())
	c.AfterCycle()
	require.Equal(t, uint64(Unbounded), c.Budget())
	require.Equal(t, "continuous", c.Mode().String())
}

func TestInspectionCommands(t *testing.T) {
	s := newTarget(t, 1024)
	s.SetReg(11, -2)

	tests := []struct {
		line string
		want string
		bad  bool
	}{
		{line: "pc", want: "PC: 0\n"},
		{line: "reg 2", want: "Reg[ 2]=0x00000400\n"},
		{line: "reg 11", want: "Reg[11]=0xfffffffe\n"},
		{line: "reg 32", want: "Illegal register index. Legal values are 0-31\n", bad: true},
		{line: "reg -1", want: "Illegal register index. Legal values are 0-31\n", bad: true},
		{line: "memb 0", want: "Mem[0]=0x13\n"},
		{line: "memh 0", want: "Mem[0]=0x0313\n"},
		{line: "memw 0", want: "Mem[0]=0x06400313\n"},
		{line: "mem 1020", want: "Mem[1020]=0x00000000\n"},
		{line: "memb 1024", want: "Illegal memory location. Legal values are 0-1023\n", bad: true},
		{line: "memh 1023", want: "Illegal memory location. Legal values are 0-1022\n", bad: true},
		{line: "memw 1021", want: "Illegal memory location. Legal values are 0-1020\n", bad: true},
		{line: "memw -4", want: "Illegal memory location. Legal values are 0-1020\n", bad: true},
		{line: "dump 0 4", want: "00000000: 13 03 40 06 \n"},
		{line: "dump 1020 8", want: "Illegal memory range. Legal values are 0-1024\n", bad: true},
		{line: "q", want: "Quiet mode on. Will not print anything\n"},
		{line: "v", want: "Verbose mode on. Will print every instruction\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := NewController(false)
			cmd, err := ParseCommand(tt.line)
			require.NoError(t, err)
			before := s.Registers()

			eff := c.Handle(cmd, s)
			require.Equal(t, tt.want, eff.Output)
			require.Equal(t, ActionNone, eff.Action)
			if tt.bad {
				require.ErrorIs(t, eff.Err, common.NewError(common.ErrSevWarn, common.ErrInvalidCommand))
			} else {
				require.NoError(t, eff.Err)
			}
			require.Equal(t, before, s.Registers())
			require.Equal(t, uint32(0), s.PC)
		})
	}
}

func TestRegisterTable(t *testing.T) {
	s := newTarget(t, 1024)
	eff := NewController(false).Handle(Command{Kind: CmdReg}, s)
	lines := strings.Split(strings.TrimSuffix(eff.Output, "\n"), "\n")
	require.Len(t, lines, 8)
	require.True(t, strings.HasPrefix(lines[0], "Reg[ 0]=0x00000000  Reg[ 1]=0x00000000  Reg[ 2]=0x00000400"))
}

func TestBreakpointCommands(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)
	run := func(line string) Effect {
		t.Helper()
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		return c.Handle(cmd, s)
	}

	require.Equal(t, "Breakpoint added. Type \"r\" to run until the breakpoint\n", run("badd 12").Output)
	require.Equal(t, "A breakpoint is already set at address 12\n", run("ba 12").Output)
	require.Equal(t, []uint32{12}, c.Breakpoints(), "re-adding must not duplicate")

	eff := run("ba 1021")
	require.Error(t, eff.Err)
	require.Equal(t, "Illegal memory location. Legal values are 0-1020\n", eff.Output)

	run("ba 4")
	want := "The following breakpoints are set:\n" +
		"  4: (op=ADDI, rd=5, rs1=0, rs2=0, imm=0)\n" +
		" 12: (op=ADD, rd=11, rs1=11, rs2=5, imm=0)\n"
	require.Equal(t, want, run("bl").Output)

	require.Equal(t, "Breakpoint removed\n", run("br 200").Output)
	require.Equal(t, "Breakpoint removed\n", run("brem 4").Output)
	require.Equal(t, []uint32{12}, c.Breakpoints())

	require.Equal(t, "Breakpoints cleared\n", run("bc").Output)
	require.Empty(t, c.Breakpoints())
	require.Equal(t, "The following breakpoints are set:\n", run("blist").Output)
}

func TestDecodeCommand(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	eff := c.Handle(Command{Kind: CmdDecode}, s)
	require.NoError(t, eff.Err)
	require.True(t, strings.HasPrefix(eff.Output, "0: I-type ADDI\n"), eff.Output)
	require.Contains(t, eff.Output, "Instruction{")

	eff = c.Handle(Command{Kind: CmdDecode, Args: []int64{20}}, s)
	require.True(t, strings.HasPrefix(eff.Output, "20: B-type BNE\n"), eff.Output)

	eff = c.Handle(Command{Kind: CmdDecode, Args: []int64{1022}}, s)
	require.Error(t, eff.Err)
}

func TestHelpAndExit(t *testing.T) {
	s := newTarget(t, 1024)
	c := NewController(false)

	eff := c.Handle(Command{Kind: CmdHelp}, s)
	require.Equal(t, HelpText, eff.Output)
	require.Contains(t, eff.Output, "exit: Exit the simulator")

	eff = c.Handle(Command{Kind: CmdExit}, s)
	require.Equal(t, ActionExit, eff.Action)
	require.Empty(t, eff.Output)
}

func TestBreakpointNotice(t *testing.T) {
	require.Equal(t, "Breakpoint encountered at PC 12", BreakpointNotice(12))
}
