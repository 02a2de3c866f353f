package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/binamralamsal/quiz-score-maintainer/internal/services"
)

const blockSize = 10

var rankMedals = [3]string{"🥇", "🥈", "🥉"}

// rankMarker returns the marker for a zero-based rank index: distinct medals
// for the top three, one generic marker for everyone else.
func rankMarker(index int) string {
	if index < len(rankMedals) {
		return rankMedals[index]
	}
	return "🔅"
}

// chunkLines groups leaderboard lines into presentation blocks: the first
// block holds exactly the top entry, every following block holds up to ten.
// Pure function of the index, so the same board always renders the same way.
func chunkLines(lines []string) [][]string {
	var blocks [][]string
	for i, line := range lines {
		if i == 0 || (i-1)%blockSize == 0 {
			blocks = append(blocks, nil)
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], line)
	}
	return blocks
}

// FormatLeaderboard renders aggregated entries as the HTML reply for
// /quizboard.
func FormatLeaderboard(entries []services.BoardEntry, tag *string) string {
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		name := html.EscapeString(entry.Name)
		if entry.Handle != nil && *entry.Handle != "" {
			name = fmt.Sprintf(`<a href="t.me/%s">%s</a>`, strings.TrimPrefix(*entry.Handle, "@"), name)
		}
		lines = append(lines, fmt.Sprintf("%s%s - %d pts", rankMarker(i), name, entry.TotalScore))
	}

	formatted := make([]string, 0, len(lines)/blockSize+1)
	for _, block := range chunkLines(lines) {
		formatted = append(formatted, "<blockquote>"+strings.Join(block, "\n")+"</blockquote>")
	}

	header := "<blockquote>🏆 Game Leaderboard 🏆</blockquote>"
	if tag != nil {
		header = fmt.Sprintf("<blockquote>🏆 Game Leaderboard of #<code>%s</code> 🏆</blockquote>", html.EscapeString(*tag))
	}

	return fmt.Sprintf("%s\n\n%s\n\n<blockquote>Proudly built with ❤️ by Binamra Lamsal @BinamraBots.</blockquote>",
		header, strings.Join(formatted, "\n"))
}

// FormatQuizList renders quiz titles as the reply for /quizzes.
func FormatQuizList(titles []string) string {
	lines := make([]string, 0, len(titles))
	for i, title := range titles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, html.EscapeString(title)))
	}
	return "<blockquote>All Quizzes Part of this group</blockquote>\n\n" + strings.Join(lines, "\n")
}

// FormatTagList renders distinct tags as the reply for /quiztags.
func FormatTagList(tags []string) string {
	lines := make([]string, 0, len(tags))
	for _, tag := range tags {
		lines = append(lines, "<code>"+html.EscapeString(tag)+"</code>")
	}
	return "<blockquote>" + strings.Join(lines, "\n") + "</blockquote>"
}
