// ABOUTME: Entry point for the streamenc command line tool
// ABOUTME: Builds the cobra command tree and exits non-zero on error
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
