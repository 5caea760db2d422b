package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"

	"newsclient/internal/domain/entity"
)

// maxSummaryRunes keeps a card's summary to about three lines.
const maxSummaryRunes = 240

var categoryColors = map[string]lipgloss.Color{
	"technology":    lipgloss.Color("#58a6ff"),
	"science":       lipgloss.Color("#7ee787"),
	"business":      lipgloss.Color("#ffa657"),
	"politics":      lipgloss.Color("#ff7b72"),
	"sports":        lipgloss.Color("#3fb950"),
	"entertainment": lipgloss.Color("#d2a8ff"),
	"health":        lipgloss.Color("#a5d6ff"),
	"world":         lipgloss.Color("#c9d1d9"),
}

type styles struct {
	title    lipgloss.Style
	meta     lipgloss.Style
	summary  lipgloss.Style
	link     lipgloss.Style
	frame    lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	hint     lipgloss.Style
	heading  lipgloss.Style
	renderer *lipgloss.Renderer
}

// newStyles binds the styles to w so colour is only emitted on terminals.
func newStyles(w io.Writer, width int) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#c9d1d9")),
		meta:     r.NewStyle().Foreground(lipgloss.Color("#8b949e")),
		summary:  r.NewStyle().Width(width - 4),
		link:     r.NewStyle().Foreground(lipgloss.Color("#484f58")),
		frame:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#30363d")).Padding(0, 1).Width(width),
		success:  r.NewStyle().Foreground(lipgloss.Color("#7ee787")),
		failure:  r.NewStyle().Foreground(lipgloss.Color("#f85149")),
		hint:     r.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true),
		heading:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff")),
		renderer: r,
	}
}

func (st styles) badge(category string) string {
	color, ok := categoryColors[strings.ToLower(category)]
	if !ok {
		color = lipgloss.Color("#8b949e")
	}
	return st.renderer.NewStyle().Foreground(color).Render(category)
}

// card renders one article. label is the number commands refer to it by.
func (st styles) card(label string, a entity.Article, bookmarked bool) string {
	title := fmt.Sprintf("[%s] %s", label, a.Title)
	if bookmarked {
		title += " ★"
	}

	var meta []string
	if a.Source != "" {
		meta = append(meta, a.Source)
	}
	if a.Category != "" {
		meta = append(meta, st.badge(a.Category))
	}
	if a.PublishedAt != nil {
		meta = append(meta, a.PublishedAt.Local().Format("Jan 2, 2006 15:04"))
	}

	lines := []string{st.title.Render(title)}
	if len(meta) > 0 {
		lines = append(lines, st.meta.Render(strings.Join(meta, " · ")))
	}
	if text := summaryText(a.Summary); text != "" {
		lines = append(lines, st.summary.Render(truncate(text, maxSummaryRunes)))
	}
	lines = append(lines, st.link.Render(a.URL))

	return st.frame.Render(strings.Join(lines, "\n"))
}

// summaryText turns the API's HTML summary into a single line of plain text.
func summaryText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
