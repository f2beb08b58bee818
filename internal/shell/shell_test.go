package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rvsim/internal/asm"
	"rvsim/internal/common"
	"rvsim/internal/cpu"
	"rvsim/internal/debug"
	"rvsim/internal/memacc"
	"rvsim/internal/printers"
)

var sumLoop = asm.Assemble(
	asm.Addi(asm.T1, asm.Zero, 100),
	asm.Addi(asm.T0, asm.Zero, 0),
	asm.Addi(asm.A1, asm.Zero, 0),
	asm.Add(asm.A1, asm.A1, asm.T0),
	asm.Addi(asm.T0, asm.T0, 1),
	asm.Bne(asm.T0, asm.T1, -8),
	asm.Exit(),
)

type harness struct {
	sh       *Shell
	out      *bytes.Buffer
	st       *cpu.State
	ctl      *debug.Controller
	exitCode int
	exited   bool
}

func newHarness(t *testing.T, prog asm.Program, input string, nonInteractive bool) *harness {
	t.Helper()
	mem := memacc.NewImage(1024)
	res := memacc.LoadReader(bytes.NewReader(prog.Bytes()), mem)
	require.True(t, res.OK(), "load: %v", res.Err)

	h := &harness{
		out:      &bytes.Buffer{},
		st:       cpu.NewState(mem),
		ctl:      debug.NewController(nonInteractive),
		exitCode: -1,
	}
	h.sh = New(strings.NewReader(input), printers.NewConsole(h.out, printers.ColorNever))
	h.sh.SetExitFunc(func(code int) {
		h.exited = true
		h.exitCode = code
	})
	return h
}

func (h *harness) run() error {
	return h.sh.Run(h.st, cpu.NewEngine(nil), h.ctl)
}

func TestBreakpointSession(t *testing.T) {
	h := newHarness(t, sumLoop, "ba 12\nr\ns\nreg 11\nbc\nr\n", false)

	require.NoError(t, h.run())
	require.False(t, h.exited)

	out := h.out.String()
	require.Equal(t, 1, strings.Count(out, "Breakpoint encountered at PC 12\n"))
	require.Equal(t, 6, strings.Count(out, Prompt))
	require.Contains(t, out, "Reg[11]=0x00000000\n")
	require.Contains(t, out, "Breakpoints cleared\n")
	require.Equal(t, int32(0x1356), h.st.Reg(int(asm.A1)))
}

func TestEndOfInputExits(t *testing.T) {
	h := newHarness(t, sumLoop, "s 2\n", false)

	err := h.run()
	require.ErrorIs(t, err, ErrExit)
	require.True(t, h.exited)
	require.Equal(t, 0, h.exitCode)
	require.Equal(t, uint32(8), h.st.PC)
}

func TestExitCommand(t *testing.T) {
	h := newHarness(t, sumLoop, "exit\nr\n", false)

	require.ErrorIs(t, h.run(), ErrExit)
	require.True(t, h.exited)
	require.Equal(t, uint32(0), h.st.PC)
	require.True(t, h.ctl.Running())
}

func TestVerboseEcho(t *testing.T) {
	h := newHarness(t, sumLoop, "v\ns 2\nq\ns\n", false)

	require.ErrorIs(t, h.run(), ErrExit)
	out := h.out.String()
	require.Contains(t, out, "Verbose mode on. Will print every instruction\n")
	require.Contains(t, out, "op=ADDI, rd=6, rs1=0, rs2=4, imm=100\n")
	require.Contains(t, out, "op=ADDI, rd=5, rs1=0, rs2=0, imm=0\n")
	require.NotContains(t, out, "rd=11", "third instruction ran in quiet mode")
}

func TestInvalidInputReprompts(t *testing.T) {
	h := newHarness(t, sumLoop, "frobnicate\nreg 40\nmemw 2000\ns x\n\nr\n", false)

	require.NoError(t, h.run())
	out := h.out.String()
	require.Contains(t, out, `Unknown command. Type "help" for help`)
	require.Contains(t, out, "Illegal register index. Legal values are 0-31\n")
	require.Contains(t, out, "Illegal memory location. Legal values are 0-1020\n")
	require.Contains(t, out, `Please type "s X" to step for X lines`)
	require.Equal(t, 6, strings.Count(out, Prompt))
}

func TestResetCommand(t *testing.T) {
	h := newHarness(t, sumLoop, "s 3\nba 4\nreset\npc\nreg 2\nmemw 0\nbl\nexit\n", false)

	require.ErrorIs(t, h.run(), ErrExit)
	out := h.out.String()
	require.Contains(t, out, "Simulator state has been reset\n")
	require.Contains(t, out, "PC: 0\n")
	require.Contains(t, out, "Reg[ 2]=0x00000400\n")
	require.Contains(t, out, "Mem[0]=0x00000000\n")
	require.Contains(t, out, "  4: (op=UNKNOWN, rd=0, rs1=0, rs2=0, imm=0)\n")
	require.Equal(t, []uint32{4}, h.ctl.Breakpoints())
}

func TestUnknownOperationWarning(t *testing.T) {
	prog := asm.Assemble(uint32(0x0000000f), asm.Exit())
	h := newHarness(t, prog, "", true)

	require.NoError(t, h.run())
	require.Contains(t, h.out.String(), "Opcode 1111 is not implemented. Are you sure the binary file is correct?\n")
	require.False(t, h.ctl.Running())
}

func TestMemoryFaultStopsRun(t *testing.T) {
	prog := asm.Assemble(asm.Lw(asm.A0, asm.SP, 0), asm.Exit())
	h := newHarness(t, prog, "", true)

	err := h.run()
	require.ErrorIs(t, err, common.NewError(common.ErrSevError, common.ErrMemFault))
	require.Equal(t, uint32(0), h.st.PC)
	require.True(t, h.ctl.Running())
}

func TestNonInteractiveIgnoresInput(t *testing.T) {
	h := newHarness(t, sumLoop, "exit\n", true)
	h.ctl.AddBreakpoint(20)

	require.NoError(t, h.run())
	require.False(t, h.exited)
	require.NotContains(t, h.out.String(), Prompt)
	require.Equal(t, 100, strings.Count(h.out.String(), "Breakpoint encountered at PC 20\n"))
}

func TestPromptImage(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "loop.bin")
	require.NoError(t, os.WriteFile(prog, sumLoop.Bytes(), 0o644))

	var out bytes.Buffer
	sh := New(strings.NewReader("\nnothere\n"+filepath.Join(dir, "loop")+"\n"), printers.NewConsole(&out, printers.ColorNever))
	sh.SetExitFunc(func(int) { t.Fatal("unexpected exit") })

	path, err := sh.PromptImage()
	require.NoError(t, err)
	require.Equal(t, prog, path)
	require.Contains(t, out.String(), "Input name of test (without extension)\n")
	require.Contains(t, out.String(), "nothere.bin does not exist. Please try again")
}

func TestPromptImageExit(t *testing.T) {
	var out bytes.Buffer
	sh := New(strings.NewReader("exit\n"), printers.NewConsole(&out, printers.ColorNever))
	code := -1
	sh.SetExitFunc(func(c int) { code = c })

	_, err := sh.PromptImage()
	require.ErrorIs(t, err, ErrExit)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "Exiting\n")
}
