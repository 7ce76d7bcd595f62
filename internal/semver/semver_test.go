package semver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"18.2.0", Version{18, 2, 0, ""}, true},
		{"v18.2.0", Version{18, 2, 0, ""}, true},
		{"18", Version{18, 0, 0, ""}, true},
		{"18.2", Version{18, 2, 0, ""}, true},
		{"19.0.0-rc.1", Version{19, 0, 0, "rc.1"}, true},
		{"18.2.0+build.5", Version{18, 2, 0, ""}, true},
		{"", Version{}, false},
		{"not-a-version", Version{}, false},
		{"1.2.3.4", Version{}, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		version    string
		rng        string
		satisfied  bool
		recognized bool
	}{
		{"19.1.0", ">=18.0.0", true, true},
		{"17.9.1", ">=18.0.0", false, true},
		{"18.3.1", ">=18.0 <19.0.0", true, true},
		{"19.1.0", ">=18.0 <19.0.0", false, true},
		{"18.2.0", "^18.0.0", true, true},
		{"19.0.0", "^18.0.0", false, true},
		{"1.2.5", "~1.2.3", true, true},
		{"1.3.0", "~1.2.3", false, true},
		{"14.0.0", ">=14.17 || >=16.0.0", false, true},
		{"14.18.0", ">=14.17 || >=16.0.0", true, true},
		{"16.1.0", ">=14.17 || >=16.0.0", true, true},
		{"18.2.0", "*", true, true},
		{"18.2.0", "18.2.0", true, true},
		{"18.2.1", "18.2.0", false, true},
		{"18.2.0", "<=18.2.0", true, true},
		{"18.2.0", "<18.2.0", false, true},
		{"18.2.0", "weird constraint", false, false},
	}
	for _, tt := range tests {
		satisfied, recognized := Satisfies(tt.version, tt.rng)
		if recognized != tt.recognized {
			t.Errorf("Satisfies(%q, %q) recognized = %v, want %v", tt.version, tt.rng, recognized, tt.recognized)
			continue
		}
		if recognized && satisfied != tt.satisfied {
			t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.version, tt.rng, satisfied, tt.satisfied)
		}
	}
}

func TestIsPrerelease(t *testing.T) {
	for version, want := range map[string]bool{
		"19.0.0-rc.1":     true,
		"18.0.0-beta.3":   true,
		"20.0.0-nightly":  true,
		"18.2.0":          false,
		"v18.2.0":         false,
		"not-a-version":   false,
		"19.0.0-canary.7": true,
	} {
		if got := IsPrerelease(version); got != want {
			t.Errorf("IsPrerelease(%q) = %v, want %v", version, got, want)
		}
	}
}

func TestCompare_PrereleaseSortsBelowRelease(t *testing.T) {
	release, _ := Parse("19.0.0")
	pre, _ := Parse("19.0.0-rc.1")
	if Compare(pre, release) != -1 {
		t.Fatal("expected prerelease to sort below the release")
	}
	if Compare(release, pre) != 1 {
		t.Fatal("expected release to sort above the prerelease")
	}
}

func TestMinimumOf(t *testing.T) {
	tests := []struct {
		constraint string
		major      int
		minor      int
		ok         bool
	}{
		{">=18.17.0", 18, 17, true},
		{">=14.17 || >=16.0.0", 14, 17, true},
		{"^20.0.0", 20, 0, true},
		{"gibberish", 0, 0, false},
	}
	for _, tt := range tests {
		major, minor, ok := MinimumOf(tt.constraint)
		if ok != tt.ok || major != tt.major || minor != tt.minor {
			t.Errorf("MinimumOf(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.constraint, major, minor, ok, tt.major, tt.minor, tt.ok)
		}
	}
}
