// Package eligibility decides whether a player's age is compatible with the
// category of the team they are being assigned to.
//
// The club historically used two incompatible rules and both are still in
// force depending on deployment, so the policy is an explicit parameter and
// configuration must pick one — there is no default:
//
//   - PolicyCutoff: age is computed at Dec 31 of the previous year, and each
//     category defines an inclusive (min, max) age range.
//   - PolicyCurrent: age is computed at the current date, and a category only
//     caps the maximum age (no lower bound).
//
// The check is pure: the reference time is a parameter, there is no I/O.
package eligibility

import (
	"fmt"
	"strings"
	"time"
)

type Policy string

const (
	// PolicyCutoff — возраст на 31 декабря прошлого года, диапазон включительно.
	PolicyCutoff Policy = "cutoff"
	// PolicyCurrent — возраст на текущую дату, только верхняя граница.
	PolicyCurrent Policy = "current"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyCutoff:
		return PolicyCutoff, nil
	case PolicyCurrent:
		return PolicyCurrent, nil
	}
	return "", fmt.Errorf("unknown eligibility policy %q (expected %q or %q)", s, PolicyCutoff, PolicyCurrent)
}

// Result of a single eligibility check. When the check is not applicable
// (no birth date, no category) OK is true and Reason stays empty.
type Result struct {
	OK     bool   `json:"ok"`
	Age    int    `json:"age"`
	Reason string `json:"reason,omitempty"`
}

// Inclusive age ranges per category code under PolicyCutoff. Codes are the
// normalized form of the category slug ("sub-14" -> "sub_14").
var cutoffRanges = map[string][2]int{
	"sub_14": {12, 14},
	"sub_16": {14, 16},
	"sub_18": {16, 18},
}

var categoryLabels = map[string]string{
	"sub_14": "Sub 14",
	"sub_16": "Sub 16",
	"sub_18": "Sub 18",
}

// Maximum ages per slug fragment under PolicyCurrent. The later generation
// of the club's forms matched category slugs by substring, so both "sub-14"
// and "sub14" count.
var currentMaxAges = []struct {
	fragments []string
	max       int
}{
	{[]string{"sub-14", "sub14"}, 14},
	{[]string{"sub-16", "sub16"}, 16},
	{[]string{"sub-18", "sub18"}, 18},
}

// CutoffDate returns the fixed reference date for PolicyCutoff:
// Dec 31 of the year before now. In 2025 the cutoff is 2024-12-31.
func CutoffDate(now time.Time) time.Time {
	return time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// AgeAt computes full years between birthDate and ref, subtracting one if
// the birthday has not yet passed at ref (day/month comparison).
func AgeAt(birthDate, ref time.Time) int {
	age := ref.Year() - birthDate.Year()
	if ref.Month() < birthDate.Month() ||
		(ref.Month() == birthDate.Month() && ref.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// Check validates a birth date against a team category under the given
// policy. A zero birth date or empty category slug short-circuits to an
// accepting result: missing data is deliberately not an error here, the
// caller decides what is required.
func Check(birthDate time.Time, categorySlug string, policy Policy, now time.Time) (Result, error) {
	if birthDate.IsZero() || strings.TrimSpace(categorySlug) == "" {
		return Result{OK: true}, nil
	}

	switch policy {
	case PolicyCutoff:
		return checkCutoff(birthDate, categorySlug, now), nil
	case PolicyCurrent:
		return checkCurrent(birthDate, categorySlug, now), nil
	}
	return Result{}, fmt.Errorf("eligibility policy not selected (got %q)", policy)
}

func checkCutoff(birthDate time.Time, categorySlug string, now time.Time) Result {
	code := normalizeCode(categorySlug)
	cutoff := CutoffDate(now)
	age := AgeAt(birthDate, cutoff)

	bounds, ok := cutoffRanges[code]
	if !ok {
		return Result{
			OK:     false,
			Age:    age,
			Reason: fmt.Sprintf("category %q is not configured for age validation", categorySlug),
		}
	}

	if age < bounds[0] || age > bounds[1] {
		label := categoryLabels[code]
		return Result{
			OK:  false,
			Age: age,
			Reason: fmt.Sprintf("age at %s is %d, outside the allowed range for %s (%d-%d)",
				cutoff.Format("02-01-2006"), age, label, bounds[0], bounds[1]),
		}
	}
	return Result{OK: true, Age: age}
}

func checkCurrent(birthDate time.Time, categorySlug string, now time.Time) Result {
	slug := strings.ToLower(categorySlug)
	age := AgeAt(birthDate, now)

	for _, rule := range currentMaxAges {
		for _, fragment := range rule.fragments {
			if strings.Contains(slug, fragment) {
				if age > rule.max {
					return Result{
						OK:     false,
						Age:    age,
						Reason: fmt.Sprintf("age is %d, above the maximum of %d for category %q", age, rule.max, categorySlug),
					}
				}
				return Result{OK: true, Age: age}
			}
		}
	}
	// Категория без возрастного правила (adulto, mixto и т.п.) — проверка не применяется.
	return Result{OK: true, Age: age}
}

func normalizeCode(slug string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(slug)), "-", "_")
}
