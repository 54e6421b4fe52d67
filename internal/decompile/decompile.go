// Package decompile turns compiled class files into source text through an
// external tool.
package decompile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FilePlaceholder in a command line is replaced with the class file path.
const FilePlaceholder = "{file}"

// DefaultCommand runs CFR from the working directory.
const DefaultCommand = "java -jar cfr.jar " + FilePlaceholder

var (
	// ErrDecompileFailed is returned when the tool exits non-zero or prints nothing.
	ErrDecompileFailed = errors.New("decompile failed")
	// ErrNoDecompiler is reported for class entries when no tool is configured.
	ErrNoDecompiler = errors.New("no decompiler configured")
)

// Decompiler produces source text for one class file.
type Decompiler interface {
	Decompile(ctx context.Context, name string, data []byte) (string, error)
}

// Exec runs a command line per class. The class is written into a private
// temporary directory that is removed afterwards.
type Exec struct {
	Args []string
}

// NewExec parses a command line. When it has no {file} placeholder the class
// path is appended as the last argument.
func NewExec(cmdline string) (*Exec, error) {
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return nil, ErrNoDecompiler
	}
	has := false
	for _, a := range args {
		if strings.Contains(a, FilePlaceholder) {
			has = true
			break
		}
	}
	if !has {
		args = append(args, FilePlaceholder)
	}
	return &Exec{Args: args}, nil
}

// Available reports whether the command's program can be found.
func (x *Exec) Available() error {
	if _, err := exec.LookPath(x.Args[0]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoDecompiler, x.Args[0], err)
	}
	return nil
}

func (x *Exec) Decompile(ctx context.Context, name string, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "sensigrep-class-*")
	if err != nil {
		return "", fmt.Errorf("%w: temp dir: %v", ErrDecompileFailed, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: temp dir: %v", ErrDecompileFailed, err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "Entry.class"
	}
	file := filepath.Join(dir, base)
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return "", fmt.Errorf("%w: write class: %v", ErrDecompileFailed, err)
	}

	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = strings.ReplaceAll(a, FilePlaceholder, file)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrDecompileFailed, name, msg)
	}
	if strings.TrimSpace(stdout.String()) == "" {
		return "", fmt.Errorf("%w: %s: empty output", ErrDecompileFailed, name)
	}
	return stdout.String(), nil
}
