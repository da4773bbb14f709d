package rollup

import (
	"regexp"
	"strings"

	"github.com/penwyp/timecat/models"
)

// A project identifier is a run of three or more digits immediately
// followed by a dash at the start of a path segment, e.g. the directory
// "446-IMD3-3d" identifies project "446".
var projectSegmentPattern = regexp.MustCompile(`^(\d{3,})-`)

// ProjectOf extracts the project identifier from a file identity. Every
// path segment is scanned, not just the leaf, since the pattern lives in a
// directory component. Unresolvable identities map to the Unknown sentinel.
func ProjectOf(fileIdentity string) string {
	if fileIdentity == "" || fileIdentity == models.NoFile {
		return models.UnknownProject
	}

	normalized := strings.ReplaceAll(fileIdentity, `\`, "/")
	for _, segment := range strings.Split(normalized, "/") {
		if m := projectSegmentPattern.FindStringSubmatch(segment); m != nil {
			return m[1]
		}
	}
	return models.UnknownProject
}
