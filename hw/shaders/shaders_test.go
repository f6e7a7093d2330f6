package shaders

import (
	"slices"
	"strings"
	"testing"
)

func TestNames(t *testing.T) {
	names := Names()
	if !slices.Contains(names, DefaultName) {
		t.Fatalf("default shader %q missing from %v", DefaultName, names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}

	for _, name := range names {
		p, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != name {
			t.Errorf("Lookup(%q).Name = %q", name, p.Name)
		}
		for _, src := range []string{p.Vertex, p.Fragment} {
			if !strings.HasPrefix(src, "#version 330 core") {
				t.Errorf("%s: unexpected GLSL version", name)
			}
		}
		if !strings.Contains(p.Fragment, "uniform sampler2D frameTexture;") {
			t.Errorf("%s.frag doesn't sample frameTexture", name)
		}
	}
}

func TestLookupMissing(t *testing.T) {
	if _, err := Lookup("Nope"); err == nil {
		t.Fatal("expected an error")
	}
}
