package tajweed

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
)

const (
	tajweedTag = "tajweed"
	spanTag    = "span"
	endClass   = "end"
)

// Segment is a run of text highlighted by at most one rule.
type Segment struct {
	Text string
	Rule string // Rule id, empty for plain text
}

// ToSpanMarkup converts the remote tajweed markup into span markup:
// <tajweed class=x> becomes <span class="x">, and the verse-end marker
// spans (<span class=end>...</span>) are removed.
func ToSpanMarkup(raw string) (string, error) {
	var b strings.Builder
	skipDepth := 0

	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", errors.Wrap(z.Err(), "failed to tokenize tajweed markup")

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(html.EscapeString(string(z.Text())))

		case html.StartTagToken:
			tok := z.Token()
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if tok.Data == spanTag && classOf(tok) == endClass {
				skipDepth = 1
				continue
			}
			if tok.Data == tajweedTag {
				tok.Data = spanTag
			}
			b.WriteString(tok.String())

		case html.EndTagToken:
			tok := z.Token()
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if tok.Data == tajweedTag {
				tok.Data = spanTag
			}
			b.WriteString(tok.String())

		case html.SelfClosingTagToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(z.Token().String())
		}
	}
}

// Segments splits tajweed markup (remote or span form) into highlighted text
// runs. Verse-end markers are dropped and adjacent runs with the same rule are
// merged.
func Segments(markup string) ([]Segment, error) {
	var segments []Segment
	var classes []string
	skipDepth := 0

	appendText := func(text, rule string) {
		if text == "" {
			return
		}
		if n := len(segments); n > 0 && segments[n-1].Rule == rule {
			segments[n-1].Text += text
			return
		}
		segments = append(segments, Segment{Text: text, Rule: rule})
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return segments, nil
			}
			return nil, errors.Wrap(z.Err(), "failed to tokenize tajweed markup")

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			rule := ""
			if len(classes) > 0 {
				rule = classes[len(classes)-1]
			}
			appendText(string(z.Text()), rule)

		case html.StartTagToken:
			tok := z.Token()
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			class := classOf(tok)
			if tok.Data == spanTag && class == endClass {
				skipDepth = 1
				continue
			}
			if class == "" && len(classes) > 0 {
				class = classes[len(classes)-1]
			}
			classes = append(classes, class)

		case html.EndTagToken:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if len(classes) > 0 {
				classes = classes[:len(classes)-1]
			}
		}
	}
}

// PlainText strips all markup and verse-end markers.
func PlainText(markup string) (string, error) {
	segments, err := Segments(markup)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String(), nil
}

func classOf(tok html.Token) string {
	for _, a := range tok.Attr {
		if a.Key == "class" {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
