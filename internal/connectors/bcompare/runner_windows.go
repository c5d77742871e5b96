//go:build windows

package bcompare

import (
	"os"
	"os/exec"
)

func setProcessGroup(_ *exec.Cmd) {}

// killProcessGroup is a no-op: killTree already walked the descendants.
func killProcessGroup(_ *os.Process) {}
