package update

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Direction values describe how a remote version relates to the installed one.
const (
	DirectionSame      = "same"
	DirectionUpgrade   = "upgrade"
	DirectionDowngrade = "downgrade"
	DirectionUnknown   = "unknown"
)

// CompareVersions orders two version strings with semantic-version rules.
// Versions may carry a leading "v". ok is false when either side is not valid.
func CompareVersions(a, b string) (cmp int, ok bool) {
	ca, cb := canonical(a), canonical(b)
	if !semver.IsValid(ca) || !semver.IsValid(cb) {
		return 0, false
	}
	return semver.Compare(ca, cb), true
}

// Direction classifies moving from local to remote.
// The rebuild decision only looks at string equality; this is informational.
func Direction(local, remote string) string {
	cmp, ok := CompareVersions(local, remote)
	switch {
	case !ok:
		return DirectionUnknown
	case cmp < 0:
		return DirectionUpgrade
	case cmp > 0:
		return DirectionDowngrade
	default:
		return DirectionSame
	}
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
