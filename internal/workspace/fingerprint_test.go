package workspace

import "testing"

func TestSanitizePackagesDefaultsEmptyVersionToLatest(t *testing.T) {
	got := SanitizePackages(map[string]string{"lodash": ""})
	if got["lodash"] != "latest" {
		t.Fatalf("want latest, got %q", got["lodash"])
	}
}

func TestSanitizePackagesDropsBlankNames(t *testing.T) {
	got := SanitizePackages(map[string]string{"  ": "1.0.0", "left-pad": "1.0.0"})
	if _, ok := got[""]; ok {
		t.Fatalf("blank name should have been dropped")
	}
	if len(got) != 1 {
		t.Fatalf("want 1 entry, got %d", len(got))
	}
}

// TestSanitizePackagesCanonicalizesEquivalentSemverRanges confirms two
// differently-spelled but semantically identical semver constraints
// fold to the same sanitized string, so Fingerprint is stable across
// cosmetic variation in a notebook's declared packages.
func TestSanitizePackagesCanonicalizesEquivalentSemverRanges(t *testing.T) {
	a := SanitizePackages(map[string]string{"left-pad": " ^1.2.0 "})
	b := SanitizePackages(map[string]string{"left-pad": "^1.2.0"})

	if a["left-pad"] != b["left-pad"] {
		t.Fatalf("expected canonicalized constraints to match: %q vs %q", a["left-pad"], b["left-pad"])
	}
}

// TestSanitizePackagesPassesThroughNonSemverSpecifiers confirms a dist
// tag (not a valid semver range) survives unchanged, since npm accepts
// specifiers Masterminds/semver was never meant to parse.
func TestSanitizePackagesPassesThroughNonSemverSpecifiers(t *testing.T) {
	got := SanitizePackages(map[string]string{"left-pad": "next"})
	if got["left-pad"] != "next" {
		t.Fatalf("want next, got %q", got["left-pad"])
	}
}

func TestFingerprintIsSortedAndDeterministic(t *testing.T) {
	a := Fingerprint(map[string]string{"b": "1.0.0", "a": "2.0.0"})
	b := Fingerprint(map[string]string{"a": "2.0.0", "b": "1.0.0"})
	if a != b {
		t.Fatalf("fingerprint should be order-independent of map iteration: %q vs %q", a, b)
	}
	if a != `[["a","2.0.0"],["b","1.0.0"]]` {
		t.Fatalf("unexpected fingerprint: %q", a)
	}
}
