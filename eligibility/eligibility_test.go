package eligibility

import (
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCutoffDate(t *testing.T) {
	got := CutoffDate(date(2025, time.June, 20))
	want := date(2024, time.December, 31)
	if !got.Equal(want) {
		t.Fatalf("CutoffDate = %v, want %v", got, want)
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		ref   time.Time
		want  int
	}{
		{"birthday passed", date(2011, time.June, 15), date(2025, time.June, 20), 14},
		{"birthday not yet", date(2011, time.June, 15), date(2025, time.June, 10), 13},
		{"birthday exactly on ref", date(2011, time.June, 15), date(2025, time.June, 15), 14},
		{"end of year cutoff", date(2011, time.June, 15), date(2024, time.December, 31), 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeAt(tt.birth, tt.ref); got != tt.want {
				t.Errorf("AgeAt(%v, %v) = %d, want %d", tt.birth, tt.ref, got, tt.want)
			}
		})
	}
}

func TestCheckCutoffPolicy(t *testing.T) {
	// Evaluated during 2025, so the cutoff is 2024-12-31.
	now := date(2025, time.June, 20)

	tests := []struct {
		name    string
		birth   time.Time
		slug    string
		wantOK  bool
		wantAge int
	}{
		// Born 2011-06-15: age 13 at the cutoff, inside 12-14.
		{"sub-14 mid range", date(2011, time.June, 15), "sub-14", true, 13},

		// Inclusive boundaries of sub_14 (12-14).
		{"sub-14 lower bound", date(2012, time.December, 31), "sub-14", true, 12},
		{"sub-14 upper bound", date(2010, time.December, 31), "sub-14", true, 14},

		// One day outside each boundary.
		{"sub-14 one day too young", date(2013, time.January, 1), "sub-14", false, 11},
		{"sub-14 one day too old", date(2009, time.December, 31), "sub-14", false, 15},

		{"sub-16 lower bound", date(2010, time.December, 31), "sub-16", true, 14},
		{"sub-16 upper bound", date(2008, time.December, 31), "sub-16", true, 16},
		{"sub-18 upper bound", date(2006, time.December, 31), "sub-18", true, 18},
		{"sub-18 too old", date(2005, time.December, 31), "sub-18", false, 19},

		// Underscore form of the slug must hit the same table.
		{"underscore slug", date(2011, time.June, 15), "sub_14", true, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Check(tt.birth, tt.slug, PolicyCutoff, now)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if res.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v (reason %q)", res.OK, tt.wantOK, res.Reason)
			}
			if res.Age != tt.wantAge {
				t.Errorf("Age = %d, want %d", res.Age, tt.wantAge)
			}
			if !tt.wantOK {
				if res.Reason == "" {
					t.Error("rejection must carry a reason")
				}
				if !strings.Contains(res.Reason, "31-12-2024") {
					t.Errorf("reason %q does not name the cutoff date", res.Reason)
				}
			}
		})
	}
}

func TestCheckCutoffUnknownCategory(t *testing.T) {
	res, err := Check(date(2011, time.June, 15), "adulto", PolicyCutoff, date(2025, time.June, 20))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.OK {
		t.Error("cutoff policy must reject categories without a configured range")
	}
	if !strings.Contains(res.Reason, "not configured") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestCheckCurrentPolicy(t *testing.T) {
	birth := date(2011, time.June, 15)

	// On 2025-06-20 the 14th birthday has passed -> accepted
	// for sub-14; one year later age 15 -> rejected.
	res, err := Check(birth, "sub-14", PolicyCurrent, date(2025, time.June, 20))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.OK || res.Age != 14 {
		t.Errorf("2025: OK=%v age=%d, want accepted at 14 (reason %q)", res.OK, res.Age, res.Reason)
	}

	res, err = Check(birth, "sub-14", PolicyCurrent, date(2026, time.June, 20))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.OK || res.Age != 15 {
		t.Errorf("2026: OK=%v age=%d, want rejected at 15", res.OK, res.Age)
	}
	if !strings.Contains(res.Reason, "15") {
		t.Errorf("reason %q does not name the computed age", res.Reason)
	}
}

func TestCheckCurrentPolicySlugForms(t *testing.T) {
	now := date(2025, time.June, 20)
	birth := date(2013, time.March, 1) // age 12

	for _, slug := range []string{"sub-16", "sub16", "equipo-sub16-a"} {
		res, err := Check(birth, slug, PolicyCurrent, now)
		if err != nil {
			t.Fatalf("Check(%q): %v", slug, err)
		}
		if !res.OK {
			t.Errorf("slug %q: expected accept, got %q", slug, res.Reason)
		}
	}

	// No sub-NN fragment at all: rule is not applicable, check passes.
	res, err := Check(birth, "adulto", PolicyCurrent, now)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.OK {
		t.Errorf("current policy must skip categories without an age rule, got %q", res.Reason)
	}
}

// The two policies genuinely disagree at the lower boundary: the cutoff
// policy enforces a minimum age while the current-date policy has none.
func TestPoliciesDisagreeOnLowerBound(t *testing.T) {
	now := date(2025, time.June, 20)
	birth := date(2014, time.March, 1) // 10 at the 2024-12-31 cutoff, 11 today

	cutoffRes, err := Check(birth, "sub-14", PolicyCutoff, now)
	if err != nil {
		t.Fatalf("Check cutoff: %v", err)
	}
	currentRes, err := Check(birth, "sub-14", PolicyCurrent, now)
	if err != nil {
		t.Fatalf("Check current: %v", err)
	}

	if cutoffRes.OK {
		t.Error("cutoff policy should reject a 10-year-old for sub-14 (minimum is 12)")
	}
	if !currentRes.OK {
		t.Error("current policy has no lower bound and should accept")
	}
}

func TestCheckSkipsOnMissingInput(t *testing.T) {
	now := date(2025, time.June, 20)

	res, err := Check(time.Time{}, "sub-14", PolicyCutoff, now)
	if err != nil || !res.OK {
		t.Errorf("zero birth date must skip validation: ok=%v err=%v", res.OK, err)
	}

	res, err = Check(date(2011, time.June, 15), "", PolicyCurrent, now)
	if err != nil || !res.OK {
		t.Errorf("empty category must skip validation: ok=%v err=%v", res.OK, err)
	}
}

func TestCheckRequiresExplicitPolicy(t *testing.T) {
	_, err := Check(date(2011, time.June, 15), "sub-14", Policy(""), date(2025, time.June, 20))
	if err == nil {
		t.Fatal("expected an error when no policy is selected")
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	now := date(2025, time.June, 20)
	birth := date(2009, time.December, 31)

	first, err := Check(birth, "sub-16", PolicyCutoff, now)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Check(birth, "sub-16", PolicyCutoff, now)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if again != first {
			t.Fatalf("call %d: %+v != %+v", i, again, first)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"cutoff", PolicyCutoff, false},
		{"CURRENT", PolicyCurrent, false},
		{" cutoff ", PolicyCutoff, false},
		{"", "", true},
		{"both", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePolicy(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
