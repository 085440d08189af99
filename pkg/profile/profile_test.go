package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	p, ok := c.Lookup("adult")
	if !ok {
		t.Fatal("default catalog should contain adult")
	}
	if p.Speed != 1.4 {
		t.Errorf("adult speed = %v, want 1.4", p.Speed)
	}
	for id, p := range c {
		if id != p.ID {
			t.Errorf("catalog key %q holds profile %q", id, p.ID)
		}
		if err := validate.Struct(p); err != nil {
			t.Errorf("default profile %q invalid: %v", id, err)
		}
	}
	if _, ok := c.Lookup("robot"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestLoadExample(t *testing.T) {
	c, err := Load("../../examples/two-rooms/profiles.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ids := c.IDs()
	if len(ids) != 2 || ids[0] != "adult" || ids[1] != "elderly" {
		t.Errorf("IDs = %v, want [adult elderly]", ids)
	}
	if p, _ := c.Lookup("elderly"); p.Speed != 0.8 || p.Color != "#e67e22" {
		t.Errorf("elderly = %+v", p)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "profiles: []", "empty"},
		{"bad yaml", "profiles: [", "parsing profiles YAML"},
		{"missing id", "profiles:\n  - speed: 1\n", "ID: field is required"},
		{"zero speed", "profiles:\n  - id: a\n    speed: 0\n", "Speed: must be greater than 0"},
		{"too fast", "profiles:\n  - id: a\n    speed: 40\n", "Speed: must not exceed 10"},
		{"bad color", "profiles:\n  - id: a\n    speed: 1\n    color: blue\n", "Color"},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.yaml))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestNewDuplicate(t *testing.T) {
	_, err := New([]Profile{{ID: "a", Speed: 1}, {ID: "a", Speed: 2}})
	if !errors.Is(err, ErrDuplicateProfile) {
		t.Errorf("expected ErrDuplicateProfile, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/profiles.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
