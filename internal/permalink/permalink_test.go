package permalink

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":      "hello-world",
		"  Trim--Me  ":      "trim-me",
		"Déjà Vu":          "d-j-vu",
		"already-a-slug":   "already-a-slug",
		"Multiple   Spaces": "multiple-spaces",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRejectsNonCanonical(t *testing.T) {
	if _, err := New("Not A Slug"); err == nil {
		t.Fatal("expected error for non-canonical slug")
	}
	p, err := New("valid-slug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Generated {
		t.Fatal("explicit permalink must not be marked generated")
	}
}

func TestRegistryConflict(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Claim("alice", Owner{Kind: "artist", Name: "Alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := reg.Claim("alice", Owner{Kind: "artist", Name: "alice"})
	if err == nil {
		t.Fatal("expected conflict error for duplicate slug")
	}
}

func TestReserveSubscribeSlugPrefixesUntilUnique(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Claim("subscribe", Owner{Kind: "release", Name: "Subscribe"})
	_ = reg.Claim("_subscribe", Owner{Kind: "release", Name: "Subscribe2"})

	got := reg.ReserveSubscribeSlug("subscribe")
	if got != "__subscribe" {
		t.Fatalf("expected double-underscore-prefixed slug, got %q", got)
	}
}
