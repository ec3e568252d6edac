package xmlrpc

import "regexp"

var stringTagRegex = regexp.MustCompile(`<string>(.*?)</string>`)

// ExtractPageIDs scans a raw dokuwiki.getPagelist response for <string>
// fragments and returns their inner text in order, duplicates included.
// The text is not unescaped and the document is not validated; page list
// responses are large and only the flat strings are needed.
func ExtractPageIDs(raw string) []string {
	matches := stringTagRegex.FindAllStringSubmatch(raw, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}
