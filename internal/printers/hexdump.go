package printers

import (
	"fmt"
	"strings"
)

// HexDump formats data as lines of up to 16 bytes, each prefixed with the
// address of its first byte.
func HexDump(base uint32, data []byte) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		sb.WriteString(fmt.Sprintf("%08x: ", base+uint32(off)))
		for _, b := range data[off:end] {
			sb.WriteString(fmt.Sprintf("%02x ", b))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
