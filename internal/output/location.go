// Package output derives where a backend writes a decompiled class and the
// virtual identifier handed back to callers.
//
// A virtual identifier has the form
//
//	smali2java:/com/example/Foo.java?<percent-encoded absolute real path>
//
// The visible part stays short for display; the query carries the exact file
// a content reader must stream.
package output

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/smali2java/internal/smali"
)

// Scheme tags every virtual identifier.
const Scheme = "smali2java"

// DefaultPackageDir holds classes without a package so they never land at the
// top level of the output root.
const DefaultPackageDir = "defpackage"

// Location is where one class's output lives.
type Location struct {
	ClassName smali.ClassName
	RealPath  string
	VirtualID VirtualID
}

// Locate maps a class to its output path under root. The result depends only
// on (root, class, ext), so repeated decompiles overwrite the same file.
func Locate(root string, class smali.ClassName, ext string) (Location, error) {
	if err := class.Validate(); err != nil {
		return Location{}, fmt.Errorf("locate output: %w", err)
	}
	if ext == "" {
		return Location{}, fmt.Errorf("locate output: empty extension")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Location{}, fmt.Errorf("locate output: resolve root %q: %w", root, err)
	}

	rel := string(class)
	if !class.HasPackage() {
		rel = DefaultPackageDir + "/" + rel
	}
	realPath := filepath.Join(absRoot, filepath.FromSlash(rel)+"."+ext)

	return Location{
		ClassName: class,
		RealPath:  realPath,
		VirtualID: VirtualID{
			Scheme:      Scheme,
			DisplayPath: "/" + string(class) + "." + ext,
			RealPath:    realPath,
		},
	}, nil
}

// VirtualID is a display path plus the real path it stands for.
type VirtualID struct {
	Scheme      string
	DisplayPath string
	RealPath    string
}

// String renders "<scheme>:<display path>?<escaped real path>".
func (v VirtualID) String() string {
	return v.Scheme + ":" + v.DisplayPath + "?" + url.PathEscape(v.RealPath)
}

// IsZero reports whether v is the zero value.
func (v VirtualID) IsZero() bool {
	return v == VirtualID{}
}

// Title is the short name shown for the result, e.g. "Foo.java".
func (v VirtualID) Title() string {
	return v.DisplayPath[strings.LastIndexByte(v.DisplayPath, '/')+1:]
}

// ParseVirtualID decodes a string produced by VirtualID.String. The display
// path never contains '?', so the first one starts the payload.
func ParseVirtualID(s string) (VirtualID, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" {
		return VirtualID{}, fmt.Errorf("invalid virtual id %q: missing scheme", s)
	}
	if scheme != Scheme {
		return VirtualID{}, fmt.Errorf("invalid virtual id %q: unsupported scheme %q", s, scheme)
	}

	display, payload, ok := strings.Cut(rest, "?")
	if !ok || payload == "" {
		return VirtualID{}, fmt.Errorf("invalid virtual id %q: missing real path", s)
	}
	if !strings.HasPrefix(display, "/") {
		return VirtualID{}, fmt.Errorf("invalid virtual id %q: display path must be absolute", s)
	}

	realPath, err := url.PathUnescape(payload)
	if err != nil {
		return VirtualID{}, fmt.Errorf("invalid virtual id %q: %w", s, err)
	}

	return VirtualID{Scheme: scheme, DisplayPath: display, RealPath: realPath}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (v VirtualID) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VirtualID) UnmarshalText(b []byte) error {
	parsed, err := ParseVirtualID(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
