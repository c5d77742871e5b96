// Command bcompare-cli runs Beyond Compare operations from the shell.
//
// Usage:
//
//	bcompare-cli compare-files   LEFT RIGHT [--format html --report PATH]
//	bcompare-cli compare-folders LEFT RIGHT [--exclude GLOB ...]
//	bcompare-cli sync            SOURCE TARGET [--direction D] [--apply]
//	bcompare-cli report          LEFT RIGHT [--type csv --output PATH]
//	bcompare-cli merge           LEFT RIGHT [--base BASE --output PATH]
//	bcompare-cli info
//
// Exit code 0 = identical. Exit code 1 = different, similar or conflict.
// Exit code 2 = the operation failed.
package main

import (
	"fmt"
	"io"
	"os"
)

var version = "dev"

const (
	exitSame      = 0
	exitDifferent = 1
	exitFailure   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := exitSame
	root := newRootCommand(stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return code
}
