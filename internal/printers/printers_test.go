package printers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"rvsim/internal/common"
	"rvsim/internal/idec"
)

func TestItemPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewItemPrinter(&buf)

	p.SetMute(true)
	if !p.IsMuted() {
		t.Error("expected muted")
	}
	p.ItemPrintLine("hidden\n")
	if buf.Len() != 0 {
		t.Errorf("expected no output while muted, got %q", buf.String())
	}
	p.SetMute(false)

	var logBuf bytes.Buffer
	p.SetMessageLogger(common.NewLogrusLoggerWithWriter(&logBuf, common.SeverityInfo))
	p.ItemPrintLine("Quiet Test\n")
	if logBuf.Len() != 0 {
		t.Errorf("lines are mirrored at debug level, got %q", logBuf.String())
	}

	p.SetMessageLogger(common.NewLogrusLoggerWithWriter(&logBuf, common.SeverityDebug))
	p.ItemPrintLine("Hello Test\n")
	if buf.String() != "Quiet Test\nHello Test\n" {
		t.Errorf("buf string mismatch: %q", buf.String())
	}
	if !strings.Contains(logBuf.String(), "Hello Test") {
		t.Errorf("logger output mismatch: %q", logBuf.String())
	}
}

func TestFormatRegisters(t *testing.T) {
	var regs [NumRegs]int32
	regs[1] = 0x64000
	regs[2] = 1 << 20
	regs[31] = -1

	got := FormatRegisters(regs)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8:\n%s", len(lines), got)
	}

	want := "Reg[ 0]=0x00000000  Reg[ 1]=0x00064000  Reg[ 2]=0x00100000  Reg[ 3]=0x00000000"
	if lines[0] != want {
		t.Errorf("first line\n got %q\nwant %q", lines[0], want)
	}
	want = "Reg[28]=0x00000000  Reg[29]=0x00000000  Reg[30]=0x00000000  Reg[31]=0xffffffff"
	if lines[7] != want {
		t.Errorf("last line\n got %q\nwant %q", lines[7], want)
	}
}

func TestRegDumpBigEndian(t *testing.T) {
	var regs [NumRegs]int32
	regs[0] = 0
	regs[1] = 0x01020304
	regs[31] = -17

	var buf bytes.Buffer
	require.NoError(t, WriteRegDump(&buf, regs))
	require.Equal(t, RegDumpSize, buf.Len())

	b := buf.Bytes()
	require.Equal(t, []byte{1, 2, 3, 4}, b[4:8])
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xef}, b[124:128])

	back, err := ReadRegDump(bytes.NewReader(b))
	require.NoError(t, err)
	if diff := cmp.Diff(regs, back); diff != "" {
		t.Errorf("register dump mismatch (-want +got):\n%s", diff)
	}
}

func TestRegDumpFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultRegDumpFile)
	var regs [NumRegs]int32
	regs[10] = 10

	require.NoError(t, WriteRegDumpFile(path, regs))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, RegDumpSize)
	require.Equal(t, []byte{0, 0, 0, 10}, data[40:44])

	err = WriteRegDumpFile(filepath.Join(path, "nested"), regs)
	require.ErrorIs(t, err, common.NewError(common.ErrSevError, common.ErrRegDumpWrite))
}

func TestReadRegDumpShort(t *testing.T) {
	_, err := ReadRegDump(bytes.NewReader(make([]byte, 12)))
	require.Error(t, err)
}

func TestInstPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewInstPrinter(&buf)
	add := idec.Decode(0x002081b3) // add gp, ra, sp

	p.InstructionIn(0, add)
	if buf.Len() != 0 {
		t.Errorf("expected printer to start muted, got %q", buf.String())
	}

	p.SetMute(false)
	p.InstructionIn(0, add)
	if got, want := buf.String(), "op=ADD, rd=3, rs1=1, rs2=2, imm=0\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	p.ShowPC(true)
	p.InstructionIn(0x40, add)
	if !strings.HasPrefix(buf.String(), "00000040: op=ADD") {
		t.Errorf("expected pc prefix, got %q", buf.String())
	}

	p.SetCollectStats()
	p.InstructionIn(4, add)
	p.InstructionIn(8, add)
	p.InstructionIn(12, idec.Decode(0x00000073))
	if p.Count(idec.OpADD) != 2 {
		t.Errorf("ADD count = %d, want 2", p.Count(idec.OpADD))
	}

	var stats bytes.Buffer
	p.PrintStats(&stats)
	for _, want := range []string{"ADD     : 2", "ECALL   : 1", "Total   : 3"} {
		if !strings.Contains(stats.String(), want) {
			t.Errorf("stats missing %q:\n%s", want, stats.String())
		}
	}
	if strings.Contains(stats.String(), "SUB") {
		t.Errorf("stats should omit zero counts:\n%s", stats.String())
	}
}

func TestHexDump(t *testing.T) {
	data := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x12, 0x34}
	want := "00000100: 00 11 22 33 44 55 66 77 88 99 aa bb cc dd ee ff \n00000110: 12 34 \n"
	if got := HexDump(0x100, data); got != want {
		t.Errorf("\nexpected:\n%q\nactual:\n%q", want, got)
	}
	if got := HexDump(0, nil); got != "" {
		t.Errorf("expected empty dump, got %q", got)
	}
}

func TestConsoleColor(t *testing.T) {
	tests := []struct {
		mode    ColorMode
		colored bool
		want    string
	}{
		{ColorAuto, false, "Breakpoint encountered at PC 8\n"},
		{ColorAlways, true, "\x1b[1;36mBreakpoint encountered at PC 8\x1b[0m\n"},
		{ColorNever, false, "Breakpoint encountered at PC 8\n"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsole(&buf, tt.mode)
			require.Equal(t, tt.colored, c.Colored())

			c.Notice("Breakpoint encountered at PC 8")
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConsoleNeverStripsEscapes(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ColorNever)
	c.Print("\x1b[31mred\x1b[0m\n")
	require.Equal(t, "red\n", buf.String())
}

func TestParseColorMode(t *testing.T) {
	tests := map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"ALWAYS": ColorAlways,
		"never":  ColorNever,
		"off":    ColorNever,
	}
	for in, want := range tests {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseColorMode("rainbow")
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	out := Inspect(idec.Decode(0x00a00513), false)
	require.Contains(t, out, "Instruction{")
	require.Contains(t, out, "Rd:")
	require.NotContains(t, out, "\x1b[")
}
