package printers

import (
	"github.com/k0kubun/pp/v3"
)

// Inspect pretty-prints v with field names, for the debugger's decode view.
func Inspect(v interface{}, color bool) string {
	p := pp.New()
	p.SetColoringEnabled(color)
	p.SetExportedOnly(true)
	return p.Sprint(v)
}
