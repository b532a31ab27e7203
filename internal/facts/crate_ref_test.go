package facts

import "testing"

func TestCrateRefRoundTrip(t *testing.T) {
	cases := []string{"serde", "tokio@1.35.0", "itoa@1.0.14"}
	for _, s := range cases {
		ref, err := ParseCrateRef(s)
		if err != nil {
			t.Fatalf("ParseCrateRef(%q): %v", s, err)
		}
		if got := ref.String(); got != s {
			t.Errorf("round trip: ParseCrateRef(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseCrateRefInvalidVersion(t *testing.T) {
	if _, err := ParseCrateRef("foo@not-a-version"); err == nil {
		t.Fatal("expected error for invalid version")
	}
}

func TestParseCrateRefNoVersion(t *testing.T) {
	ref, err := ParseCrateRef("hyper")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Name() != "hyper" || ref.Version() != nil {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}
