// Package main implements rvsim_err - lists the simulator error codes and
// their descriptions.
package main

import (
	"fmt"
	"io"
	"os"

	"rvsim/internal/common"
)

func printCodes(w io.Writer) {
	fmt.Fprintln(w, "RISC-V Simulator Error Code List")
	fmt.Fprintln(w)

	for _, code := range common.ErrorCodes() {
		fmt.Fprintf(w, "%d: %s - %s\n", code, common.CodeName(code), common.CodeDesc(code))
	}
}

func main() {
	printCodes(os.Stdout)
}
