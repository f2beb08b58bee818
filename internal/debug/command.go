package debug

import (
	"strconv"
	"strings"

	"rvsim/internal/common"
)

// CommandKind identifies a debugger command.
type CommandKind int

const (
	CmdNone CommandKind = iota // blank line
	CmdRun
	CmdStep
	CmdPC
	CmdReg
	CmdMemByte
	CmdMemHalf
	CmdMemWord
	CmdMemDump
	CmdQuiet
	CmdVerbose
	CmdReset
	CmdBreakAdd
	CmdBreakRemove
	CmdBreakList
	CmdBreakClear
	CmdDecode
	CmdHelp
	CmdExit
)

var commandNames = map[CommandKind]string{
	CmdNone:        "none",
	CmdRun:         "run",
	CmdStep:        "step",
	CmdPC:          "pc",
	CmdReg:         "reg",
	CmdMemByte:     "memb",
	CmdMemHalf:     "memh",
	CmdMemWord:     "memw",
	CmdMemDump:     "dump",
	CmdQuiet:       "quiet",
	CmdVerbose:     "verbose",
	CmdReset:       "reset",
	CmdBreakAdd:    "badd",
	CmdBreakRemove: "brem",
	CmdBreakList:   "blist",
	CmdBreakClear:  "bclear",
	CmdDecode:      "decode",
	CmdHelp:        "help",
	CmdExit:        "exit",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return "CommandKind(" + strconv.Itoa(int(k)) + ")"
}

// argSpec describes the argument a command takes.
type argSpec int

const (
	argNone     argSpec = iota
	argOptional         // zero or one number
	argRequired         // exactly one number
	argTwo              // one required, one optional
)

type commandDef struct {
	kind  CommandKind
	args  argSpec
	usage string
}

var commandTable = map[string]commandDef{
	"r":       {CmdRun, argNone, ""},
	"run":     {CmdRun, argNone, ""},
	"s":       {CmdStep, argOptional, `Unknown input. Please type "s X" to step for X lines, or "s" to step for one line`},
	"step":    {CmdStep, argOptional, `Unknown input. Please type "s X" to step for X lines, or "s" to step for one line`},
	"pc":      {CmdPC, argNone, ""},
	"reg":     {CmdReg, argOptional, `Unknown input. Please type "reg X" to view register X, or "reg" to dump all registers`},
	"memb":    {CmdMemByte, argRequired, `Unknown input. Please type "memb X" to view the byte at memory location X`},
	"memh":    {CmdMemHalf, argRequired, `Unknown input. Please type "memh X" to view the halfword starting at memory location X`},
	"mem":     {CmdMemWord, argRequired, `Unknown input. Please type "mem X" to view the word starting at memory location X`},
	"memw":    {CmdMemWord, argRequired, `Unknown input. Please type "mem X" to view the word starting at memory location X`},
	"dump":    {CmdMemDump, argTwo, `Unknown input. Please type "dump X [N]" to view N bytes starting at memory location X`},
	"q":       {CmdQuiet, argNone, ""},
	"quiet":   {CmdQuiet, argNone, ""},
	"v":       {CmdVerbose, argNone, ""},
	"verbose": {CmdVerbose, argNone, ""},
	"reset":   {CmdReset, argNone, ""},
	"ba":      {CmdBreakAdd, argRequired, `Unknown input. Please type "badd X" to add a breakpoint at instruction address X`},
	"badd":    {CmdBreakAdd, argRequired, `Unknown input. Please type "badd X" to add a breakpoint at instruction address X`},
	"br":      {CmdBreakRemove, argRequired, `Unknown input. Please type "brem X" to remove the breakpoint at address X`},
	"brem":    {CmdBreakRemove, argRequired, `Unknown input. Please type "brem X" to remove the breakpoint at address X`},
	"bl":      {CmdBreakList, argNone, ""},
	"blist":   {CmdBreakList, argNone, ""},
	"bc":      {CmdBreakClear, argNone, ""},
	"bclear":  {CmdBreakClear, argNone, ""},
	"d":       {CmdDecode, argOptional, `Unknown input. Please type "decode X" to decode the instruction at address X, or "decode" for the current PC`},
	"decode":  {CmdDecode, argOptional, `Unknown input. Please type "decode X" to decode the instruction at address X, or "decode" for the current PC`},
	"h":       {CmdHelp, argNone, ""},
	"help":    {CmdHelp, argNone, ""},
	"exit":    {CmdExit, argNone, ""},
}

// UnknownCommandMsg is reported for an unrecognised command word.
const UnknownCommandMsg = `Unknown command. Type "help" for help`

// Command is one parsed debugger command. Args holds the numeric arguments
// actually supplied; trailing extra words are ignored.
type Command struct {
	Kind CommandKind
	Args []int64
}

// Arg returns argument i, or def when it was not supplied.
func (c Command) Arg(i int, def int64) int64 {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return def
}

// HasArg reports whether argument i was supplied.
func (c Command) HasArg(i int) bool { return i < len(c.Args) }

// ParseCommand tokenizes one input line. Numbers may be decimal or carry a
// 0x, 0o or 0b prefix. A malformed argument yields an ErrInvalidCommand
// error whose message is the usage line for that command.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CmdNone}, nil
	}

	def, ok := commandTable[fields[0]]
	if !ok {
		return Command{}, common.NewErrorMsg(common.ErrSevWarn, common.ErrInvalidCommand, UnknownCommandMsg)
	}

	cmd := Command{Kind: def.kind}
	rest := fields[1:]

	var want, need int
	switch def.args {
	case argOptional:
		want = 1
	case argRequired:
		want, need = 1, 1
	case argTwo:
		want, need = 2, 1
	}

	for i := 0; i < want && i < len(rest); i++ {
		v, err := parseNumber(rest[i])
		if err != nil {
			return Command{}, usageError(def)
		}
		cmd.Args = append(cmd.Args, v)
	}
	if len(cmd.Args) < need {
		return Command{}, usageError(def)
	}
	return cmd, nil
}

func usageError(def commandDef) error {
	return common.NewErrorMsg(common.ErrSevWarn, common.ErrInvalidCommand, def.usage)
}

func parseNumber(s string) (int64, error) {
	return strconv.ParseInt(s, 0, 64)
}
