package fixtures

import (
	"fmt"
	"html"
	"strings"
)

// GenerateBody generates English article text of approximately length characters
// (within ±10%). The text is coherent enough for readability extraction.
func GenerateBody(length int) string {
	sentences := []string{
		"The city council approved a new budget for public transport on Tuesday.",
		"Officials said the plan would add three bus routes by the end of the year.",
		"Residents in the northern districts have long asked for better connections.",
		"The proposal also funds repairs to two bridges damaged during the monsoon.",
		"Opposition members questioned whether the timeline was realistic.",
		"A final review of the contracts is expected before the next session.",
		"Analysts noted that ridership has grown steadily over the past decade.",
		"The mayor described the vote as an important step for the region.",
	}

	var builder strings.Builder
	for i := 0; ; i++ {
		sentence := sentences[i%len(sentences)]
		next := len(sentence)
		if builder.Len() > 0 {
			next++
		}
		if builder.Len() >= int(float64(length)*0.9) && builder.Len()+next > int(float64(length)*1.1) {
			break
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(sentence)
		if builder.Len() >= length {
			break
		}
	}
	return builder.String()
}

// ArticlePage renders a complete HTML page with a title, navigation chrome and
// paragraphs of body text, suitable for the readability reader.
func ArticlePage(title string, paragraphs int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html><html><head><title>%s</title></head><body>", html.EscapeString(title))
	b.WriteString(`<nav><a href="/">Home</a> <a href="/world">World</a> <a href="/sport">Sport</a></nav>`)
	fmt.Fprintf(&b, "<article><h1>%s</h1>", html.EscapeString(title))
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(GenerateBody(400)))
	}
	b.WriteString(`</article><footer>Copyright Example News</footer></body></html>`)
	return b.String()
}
