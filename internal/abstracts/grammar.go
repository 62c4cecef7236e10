package abstracts

import (
	"regexp"
	"strings"
)

// Grammar recognizes the title line of a record.
type Grammar struct {
	Name string
	// Marker matches the prefix in front of the title text.
	Marker *regexp.Regexp
}

// Title returns the text after the marker, trimmed.
func (g Grammar) Title(line string) (string, bool) {
	loc := g.Marker.FindStringIndex(line)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return strings.TrimSpace(line[loc[1]:]), true
}

var (
	// NIPS matches lines such as "#12 [Spotlight] Title".
	NIPS = Grammar{Name: "nips", Marker: regexp.MustCompile(`^#\d+\s+(?:\[[^\]]*\])?\s*`)}

	// Numbered matches lines such as "12. Title" or "12) Title".
	Numbered = Grammar{Name: "numbered", Marker: regexp.MustCompile(`^\d+[.)]\s+`)}
)
