package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	titlePattern = regexp.MustCompile(`The quiz '(.+?)' has finished!`)
	entryPattern = regexp.MustCompile(`(?:🥇|🥈|🥉|\d+\.)\s*(.+?)\s*–\s*(\d+)`)
)

// Entry is one ranked line of a result announcement, as written: a display
// token (name or @handle) and the raw score.
type Entry struct {
	Display string `json:"display"`
	Score   int    `json:"score"`
}

// IsHandle reports whether the entry references a participant by handle and
// needs a directory lookup to resolve.
func (e Entry) IsHandle() bool {
	return strings.Contains(e.Display, "@")
}

type Result struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Empty reports that the text carried no quiz data at all. Callers treat this
// as "nothing to ingest", not as an error.
func (r Result) Empty() bool {
	return r.Title == "" && len(r.Entries) == 0
}

// Parse extracts the quiz title and ranked entries from a result announcement.
// A missing title yields an empty string; entries keep the order they appear
// in the text. Parse is pure: the same text always produces the same result.
func Parse(text string) Result {
	var res Result

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		res.Title = m[1]
	}

	for _, m := range entryPattern.FindAllStringSubmatch(text, -1) {
		score, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		res.Entries = append(res.Entries, Entry{
			Display: strings.TrimSpace(m[1]),
			Score:   score,
		})
	}

	return res
}
