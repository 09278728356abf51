// Command matchctl inspects quiz catalogs and runs the scorer and matcher
// offline against answer and program files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
