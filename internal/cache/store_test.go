package cache

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/output"
	"github.com/Iron-Ham/smali2java/internal/smali"
)

const root = "/cache/decompiled"

func seed(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStore_Entries(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{
		"com/example/Foo.java":       "class Foo {}",
		"com/example/Foo$Inner.java": "class Inner {}",
		"defpackage/Bare.java":       "class Bare {}",
		"defpackage/nested/X.java":   "class X {}",
	})

	entries, err := NewStore(fs, root).Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	want := []smali.ClassName{"Bare", "com/example/Foo", "com/example/Foo$Inner", "defpackage/nested/X"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, e := range entries {
		if e.ClassName != want[i] {
			t.Errorf("entries[%d].ClassName = %q, want %q", i, e.ClassName, want[i])
		}
	}
	if entries[0].RealPath != filepath.Join(root, "defpackage", "Bare.java") {
		t.Errorf("RealPath = %q", entries[0].RealPath)
	}
	if entries[1].Size != int64(len("class Foo {}")) {
		t.Errorf("Size = %d", entries[1].Size)
	}
}

func TestStore_EntriesMissingRoot(t *testing.T) {
	entries, err := NewStore(afero.NewMemMapFs(), root).Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Entries() = %v, want none", entries)
	}
}

func TestStore_Clear(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"p/C.java": "x"})
	s := NewStore(fs, root)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ok, _ := afero.Exists(fs, root); ok {
		t.Error("root should be gone after Clear()")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() on missing root = %v, want nil", err)
	}

	// The output location derived for the next decompile is unaffected.
	loc, err := output.Locate(root, "p/C", "java")
	if err != nil {
		t.Fatal(err)
	}
	if loc.RealPath != filepath.Join(root, "p", "C.java") {
		t.Errorf("RealPath = %q", loc.RealPath)
	}
}

func TestStore_Stats(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"a/A.java": "12345", "B.txt": "", "defpackage/B.java": "123"})

	st, err := NewStore(fs, root).Stats()
	if err != nil {
		t.Fatal(err)
	}
	// B.txt maps to class "B" at the top level and still counts.
	if st.Entries != 3 || st.TotalBytes != 8 {
		t.Errorf("Stats() = %+v, want 3 entries / 8 bytes", st)
	}
}

func TestStore_Open(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"com/example/Foo.java": "class Foo {}"})
	s := NewStore(fs, root)

	loc, err := output.Locate(root, "com/example/Foo", "java")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("streams the file behind an identifier", func(t *testing.T) {
		rc, err := s.OpenString(loc.VirtualID.String())
		if err != nil {
			t.Fatalf("OpenString() error = %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "class Foo {}" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		other, _ := output.Locate(root, "com/example/Gone", "java")
		if _, err := s.Open(other.VirtualID); err == nil {
			t.Error("Open() of a missing file should fail")
		}
	})

	t.Run("outside the root", func(t *testing.T) {
		if err := afero.WriteFile(fs, "/etc/passwd", []byte("root"), 0o644); err != nil {
			t.Fatal(err)
		}
		id := output.VirtualID{Scheme: output.Scheme, DisplayPath: "/x.java", RealPath: "/etc/passwd"}
		if _, err := s.Open(id); err == nil {
			t.Error("Open() outside the root should fail")
		}
		id.RealPath = root + "/../../etc/passwd"
		if _, err := s.Open(id); err == nil {
			t.Error("Open() escaping with .. should fail")
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		id := loc.VirtualID
		id.Scheme = "file"
		if _, err := s.Open(id); err == nil {
			t.Error("Open() with a foreign scheme should fail")
		}
	})

	t.Run("malformed identifier", func(t *testing.T) {
		if _, err := s.OpenString("not-an-id"); err == nil {
			t.Error("OpenString() should fail")
		}
	})
}
