// Package smali extracts class identity from smali source units.
package smali

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/errors"
)

// ClassName is a fully-qualified class name using '/' as the package separator,
// e.g. "com/example/Foo". A valid ClassName is non-empty and safe to use as a
// relative path fragment.
type ClassName string

// maxLineSize bounds a single smali line. Header lines are short; long string
// constants further down the file are never reached.
const maxLineSize = 1024 * 1024

// ParseClassName accepts a slash-separated name, a dot-separated name, or a
// type descriptor ("Lcom/example/Foo;") and returns the canonical form.
func ParseClassName(s string) (ClassName, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";") {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, "/") {
		s = strings.ReplaceAll(s, ".", "/")
	}
	name := ClassName(s)
	if err := name.Validate(); err != nil {
		return "", err
	}
	return name, nil
}

// Validate reports whether the name is usable both as a cache key and as a
// relative path.
func (c ClassName) Validate() error {
	if c == "" {
		return fmt.Errorf("empty class name")
	}
	// '?' separates the display path from the payload in a VirtualID.
	if strings.ContainsAny(string(c), "\\?\x00") {
		return fmt.Errorf("class name %q contains an illegal character", string(c))
	}
	for _, seg := range strings.Split(string(c), "/") {
		switch seg {
		case "":
			return fmt.Errorf("class name %q has an empty segment", string(c))
		case ".", "..":
			return fmt.Errorf("class name %q has a relative segment", string(c))
		}
	}
	return nil
}

// HasPackage reports whether the class lives outside the default package.
func (c ClassName) HasPackage() bool {
	return strings.Contains(string(c), "/")
}

// Package returns the package path ("com/example"), or "" for the default package.
func (c ClassName) Package() string {
	if i := strings.LastIndexByte(string(c), '/'); i >= 0 {
		return string(c[:i])
	}
	return ""
}

// SimpleName returns the last path segment ("Foo").
func (c ClassName) SimpleName() string {
	if i := strings.LastIndexByte(string(c), '/'); i >= 0 {
		return string(c[i+1:])
	}
	return string(c)
}

// Dotted returns the Java source form ("com.example.Foo").
func (c ClassName) Dotted() string {
	return strings.ReplaceAll(string(c), "/", ".")
}

func (c ClassName) String() string { return string(c) }

// Resolve reads smali source up to its class header and returns the class
// name. The first directive must be ".class"; blank lines and '#' comments
// before it are skipped. Nothing after the header is read.
func Resolve(r io.Reader) (ClassName, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return parseHeader(line, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return "", errors.NewInvalidInputError("failed to read smali source", err)
	}
	return "", errors.NewInvalidInputError("missing .class directive", nil)
}

// parseHeader parses ".class [modifiers...] Lpkg/Name; [# comment]".
func parseHeader(line string, lineNum int) (ClassName, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if fields[0] != ".class" {
		return "", errors.NewInvalidInputError(
			fmt.Sprintf("line %d: expected .class directive, found %s", lineNum, fields[0]), nil)
	}
	if len(fields) < 2 {
		return "", errors.NewInvalidInputError(
			fmt.Sprintf("line %d: .class directive has no type descriptor", lineNum), nil)
	}

	desc := fields[len(fields)-1]
	if !strings.HasPrefix(desc, "L") || !strings.HasSuffix(desc, ";") || len(desc) < 3 {
		return "", errors.NewInvalidInputError(
			fmt.Sprintf("line %d: malformed class descriptor %q", lineNum, desc), nil)
	}

	name := ClassName(desc[1 : len(desc)-1])
	if err := name.Validate(); err != nil {
		return "", errors.NewInvalidInputError(fmt.Sprintf("line %d", lineNum), err)
	}
	return name, nil
}

// ResolveFile opens path on fs and resolves its class name. Every failure,
// including an unreadable file, is an InvalidInputError carrying the path.
func ResolveFile(fs afero.Fs, path string) (ClassName, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", errors.NewInvalidInputError("cannot open smali file", err).WithPath(path)
	}
	defer func() { _ = f.Close() }()

	name, err := Resolve(f)
	if err != nil {
		var invalid *errors.InvalidInputError
		if errors.As(err, &invalid) {
			return "", invalid.WithPath(path)
		}
		return "", err
	}
	return name, nil
}
