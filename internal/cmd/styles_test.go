package cmd

import (
	"bytes"
	"testing"
)

func TestPainter_PlainWhenNotTerminal(t *testing.T) {
	p := newPainter(new(bytes.Buffer))
	if p.enabled {
		t.Fatal("painter should be disabled for a buffer")
	}
	if got := p.paint(failStyle, "FAIL"); got != "FAIL" {
		t.Errorf("paint() = %q, want plain text", got)
	}
	if got := p.level("WARN"); got != "WARN" {
		t.Errorf("level() = %q, want plain text", got)
	}
	long := "/a/very/long/path/that/would/not/fit/anywhere/Foo.java"
	if got := p.fitPath(long, 10); got != long {
		t.Errorf("fitPath() without a width = %q, want unchanged", got)
	}
}

func TestPainter_Fit(t *testing.T) {
	p := painter{width: 30}

	if got := p.fitPath("/home/me/.cache/smali2java/decompiled/com/example/Foo.java", 10); got != ".../example/Foo.java" {
		t.Errorf("fitPath() = %q", got)
	}
	if got := p.fit("ERROR - cannot decode method body of Foo", 4); got != "ERROR - cannot decode m..." {
		t.Errorf("fit() = %q", got)
	}
	// Never narrower than 8 columns
	if got := p.fit("0123456789abc", 29); got != "01234..." {
		t.Errorf("fit() with little room = %q", got)
	}
}
