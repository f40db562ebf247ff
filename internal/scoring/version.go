package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// parsedVersion is the {major, minor, patch, suffix} decomposition of
// a version string, where suffix captures trailing letters glued to
// the patch segment (e.g. "10.0s0" -> major=10, minor=0, patch=0,
// suffix="s0").
type parsedVersion struct {
	ok     bool
	major  int
	minor  int
	patch  int
	suffix string
}

var versionLayout = regexp.MustCompile(`^[vV]?(\d+)(?:\.(\d+))?(?:\.(\d+))?([a-zA-Z]+\d*)?$`)

// parseVersion decomposes a version string into major/minor/patch and
// an optional suffix. A leading v/V is stripped first. Returns
// ok=false if the string doesn't match the expected grammar at all
// (e.g. a year form is handled separately by isYearForm).
func parseVersion(v string) parsedVersion {
	m := versionLayout.FindStringSubmatch(v)
	if m == nil {
		return parsedVersion{}
	}
	major, _ := strconv.Atoi(m[1])
	minor := 0
	if m[2] != "" {
		minor, _ = strconv.Atoi(m[2])
	}
	patch := 0
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
	}
	return parsedVersion{ok: true, major: major, minor: minor, patch: patch, suffix: m[4]}
}

var yearForm = regexp.MustCompile(`^\d{4}$`)

// isYearForm reports whether a version string is a bare 4-digit year,
// e.g. "2019".
func isYearForm(v string) (year int, ok bool) {
	if !yearForm.MatchString(v) {
		return 0, false
	}
	y, _ := strconv.Atoi(v)
	return y, true
}

// Join reconstructs a canonical dotted-integer form (plus suffix) from
// a decomposition, used only to exercise the idempotence property
// (parseVersion(parseVersion(x).Join()) == parseVersion(x)).
func (p parsedVersion) Join() string {
	if !p.ok {
		return ""
	}
	return strconv.Itoa(p.major) + "." + strconv.Itoa(p.minor) + "." + strconv.Itoa(p.patch) + p.suffix
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// equalFold reports case-insensitive string equality, used for the
// version equality check before falling back to decomposition.
func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(a, "v"), "V"),
		strings.TrimPrefix(strings.TrimPrefix(b, "v"), "V"))
}
