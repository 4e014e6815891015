// Command lendctl runs the document checks and scoring pipeline offline,
// against files on disk.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
