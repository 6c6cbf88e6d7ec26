package watch

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**.smali", "Foo.smali", true},
		{"**.smali", "com/example/Foo.smali", true},
		{"**.smali", "com/example/Foo.java", false},
		{"*.smali", "Foo.smali", true},
		{"*.smali", "com/Foo.smali", false},
		{"smali_classes*/**.smali", "smali_classes2/a/B.smali", true},
		{"smali_classes*/**.smali", "smali/a/B.smali", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			m, err := NewMatcher(tt.pattern)
			if err != nil {
				t.Fatalf("NewMatcher() error = %v", err)
			}
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewMatcher_Invalid(t *testing.T) {
	if _, err := NewMatcher("[unclosed"); err == nil {
		t.Error("NewMatcher() should reject an unterminated class")
	}
}

func TestMatcher_Expand(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/apk/smali/com/example/B.smali",
		"/apk/smali/com/example/A.smali",
		"/apk/smali/Top.smali",
		"/apk/res/values.xml",
		"/apk/.git/objects/X.smali",
	} {
		if err := afero.WriteFile(fs, p, []byte(".class public LX;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := NewMatcher("**.smali")
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Expand(fs, "/apk")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	want := []string{
		"/apk/smali/Top.smali",
		"/apk/smali/com/example/A.smali",
		"/apk/smali/com/example/B.smali",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestMatcher_ExpandMissingRoot(t *testing.T) {
	m, _ := NewMatcher("**.smali")
	if _, err := m.Expand(afero.NewMemMapFs(), "/nope"); err == nil {
		t.Error("Expand() on a missing root should fail")
	}
}
