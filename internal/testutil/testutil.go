// Package testutil provides testing utilities for smali2java tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// SmaliSource returns a minimal single-class smali file for class, given in
// slash form ("com/example/Foo").
func SmaliSource(class string) string {
	return ".class public L" + class + ";\n" +
		".super Ljava/lang/Object;\n" +
		".source \"" + filepath.Base(class) + ".java\"\n"
}

// WriteSmali writes SmaliSource(class) to dir/rel, creating parent
// directories, and returns the full path.
func WriteSmali(t *testing.T, dir, rel, class string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, rel), SmaliSource(class), 0o644)
}

// WriteExecutable writes an executable script to path and returns path.
func WriteExecutable(t *testing.T, path, script string) string {
	t.Helper()
	return WriteFile(t, path, script, 0o755)
}

// WriteFile writes content to path with perm, creating parent directories.
func WriteFile(t *testing.T, path, content string, perm os.FileMode) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// SkipIfNoShell skips the test if /bin/sh is not available.
func SkipIfNoShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH, skipping test")
	}
}

// SkipIfNoGolangciLint skips the test if golangci-lint is not installed.
func SkipIfNoGolangciLint(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("golangci-lint"); err != nil {
		t.Skip("golangci-lint not found in PATH, skipping test")
	}
}
