// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package command runs external binaries (pandoc, clipboard helpers) behind
// an interface so callers can be tested without them.
package command

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testing.
type Executor interface {
	// LookPath resolves file on PATH.
	LookPath(file string) (string, error)

	// Run executes name with args, wiring stdin and stdout. A nil stdin
	// reads from the null device. Standard error is folded into the
	// returned error.
	Run(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// OS is the production Executor backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Available reports whether every named binary is on PATH.
func Available(exec Executor, bins ...string) bool {
	for _, b := range bins {
		if _, err := exec.LookPath(b); err != nil {
			return false
		}
	}
	return true
}
