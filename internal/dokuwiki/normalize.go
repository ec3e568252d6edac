package dokuwiki

import (
	"regexp"
	"strings"
)

var (
	blankRun = regexp.MustCompile(`[\s_]+`)
	nsRun    = regexp.MustCompile(`[:._-]*:[:._-]*`)
)

// NormalizeID returns the canonical form of a page id, close to
// DokuWiki's cleanID: lowercase, blanks as underscores, ';' and '/' as
// namespace separators, runs of separators collapsed and separators
// trimmed from both ends. It is used for comparison only.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.NewReplacer(";", ":", "/", ":").Replace(id)
	id = blankRun.ReplaceAllString(id, "_")
	id = nsRun.ReplaceAllString(id, ":")
	return strings.Trim(id, ":._-")
}
