package common

import (
	"fmt"
	"strings"
)

// Err is a simulator error code.
type Err uint32

const (
	OK                  Err = 0
	ErrFail             Err = 1
	ErrMemFault         Err = 2
	ErrUnknownOperation Err = 3
	ErrInvalidCommand   Err = 4
	ErrImageNotFound    Err = 5
	ErrImageTooLarge    Err = 6
	ErrImageRead        Err = 7
	ErrConfigParse      Err = 8
	ErrRegDumpWrite     Err = 9
	ErrLast             Err = 10
)

// ErrSeverity grades an Error.
type ErrSeverity int

const (
	ErrSevNone ErrSeverity = iota
	ErrSevError
	ErrSevWarn
	ErrSevInfo
)

// BadAddr marks an Error without a PC or data address.
const BadAddr = ^uint64(0)

// Error is the simulator error object. PC and Addr carry the diagnostic
// context of faults and are BadAddr when not applicable.
type Error struct {
	Code    Err
	Sev     ErrSeverity
	PC      uint64
	Addr    uint64
	Message string
}

func NewError(sev ErrSeverity, code Err) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		PC:   BadAddr,
		Addr: BadAddr,
	}
}

func NewErrorMsg(sev ErrSeverity, code Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		PC:      BadAddr,
		Addr:    BadAddr,
		Message: msg,
	}
}

func NewErrorWithPC(sev ErrSeverity, code Err, pc uint32, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		PC:      uint64(pc),
		Addr:    BadAddr,
		Message: msg,
	}
}

func NewErrorWithPCAddr(sev ErrSeverity, code Err, pc, addr uint32, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		PC:      uint64(pc),
		Addr:    uint64(addr),
		Message: msg,
	}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case ErrSevError:
		sb.WriteString("ERROR:")
	case ErrSevWarn:
		sb.WriteString("WARN :")
	case ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "SIMULATOR INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", uint32(e.Code)))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	if e.PC != BadAddr {
		sb.WriteString(fmt.Sprintf("PC=0x%08x; ", e.PC))
	}

	if e.Addr != BadAddr {
		sb.WriteString(fmt.Sprintf("Addr=0x%08x; ", e.Addr))
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// Is matches another *Error with the same code, so that errors.Is works
// against code-only templates such as NewError(ErrSevError, ErrMemFault).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Fatal reports whether the error should end the run.
func (e *Error) Fatal() bool {
	return e.Sev == ErrSevError
}

// CodeName returns the symbolic name of code.
func CodeName(code Err) string {
	if desc, ok := errorCodeDesc[code]; ok {
		return desc.name
	}
	return "unknown"
}

// CodeDesc returns the description of code.
func CodeDesc(code Err) string {
	if desc, ok := errorCodeDesc[code]; ok {
		return desc.msg
	}
	return ""
}

// ErrorCodes returns all defined codes in ascending order.
func ErrorCodes() []Err {
	codes := make([]Err, 0, ErrLast+1)
	for c := OK; c <= ErrLast; c++ {
		codes = append(codes, c)
	}
	return codes
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[Err]errDesc{
	OK:                  {"RV_OK", "No Error."},
	ErrFail:             {"RV_ERR_FAIL", "General failure."},
	ErrMemFault:         {"RV_ERR_MEM_FAULT", "Memory access outside the memory image."},
	ErrUnknownOperation: {"RV_ERR_UNKNOWN_OP", "Instruction word does not decode to a supported operation."},
	ErrInvalidCommand:   {"RV_ERR_INVALID_COMMAND", "Malformed or out of range debugger command."},
	ErrImageNotFound:    {"RV_ERR_IMAGE_NOT_FOUND", "Program image file not found."},
	ErrImageTooLarge:    {"RV_ERR_IMAGE_TOO_LARGE", "Program image larger than memory."},
	ErrImageRead:        {"RV_ERR_IMAGE_READ", "Program image could not be read."},
	ErrConfigParse:      {"RV_ERR_CONFIG_PARSE", "Configuration file parse error."},
	ErrRegDumpWrite:     {"RV_ERR_REGDUMP_WRITE", "Register dump file could not be written."},
	ErrLast:             {"RV_ERR_LAST", "No error - error code end marker"},
}
