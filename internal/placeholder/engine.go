package placeholder

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
)

// Placeholder tokens recognized in template copy. Markers are literal; the
// side panel inserts them and this engine is the only thing that rewrites
// them.
const (
	TokenBusinessName = "{{business_name}}"
	TokenAddress      = "{{business_address}}"
	TokenPhone        = "{{business_phone}}"
	TokenHours        = "{{business_hours}}"
	TokenSlogan       = "{{business_slogan}}"
	TokenDescription  = "{{business_description}}"
	TokenServices     = "{{business_services}}"
	TokenIndustry     = "{{business_industry}}"
)

// richTextAttr marks nodes whose description substitution may carry rendered
// markdown instead of plain text.
const richTextAttr = "data-richtext"

var tokens = []string{
	TokenBusinessName,
	TokenAddress,
	TokenPhone,
	TokenHours,
	TokenSlogan,
	TokenDescription,
	TokenServices,
	TokenIndustry,
}

// Engine rewrites placeholder tokens in a document using a business info
// record. Substitution is idempotent (tokens are replaced, never appended to)
// and order independent (fields never overlap the same leaf). Blank fields
// leave the existing template copy in place, so an unfinished record never
// degrades a template's marketing copy.
type Engine struct {
	markdown goldmark.Markdown
}

// New constructs a substitution engine.
func New() *Engine {
	return &Engine{markdown: goldmark.New()}
}

var _ document.Substituter = (*Engine)(nil)

// Apply returns a copy of the snapshot with recognized tokens replaced.
func (e *Engine) Apply(snapshot *document.Snapshot, info domain.BusinessInfo) *document.Snapshot {
	copied := snapshot.Clone()
	e.ApplyInPlace(copied, info)
	return copied
}

// ApplyInPlace rewrites the snapshot's text and attribute leaves, reporting
// whether anything changed.
func (e *Engine) ApplyInPlace(snapshot *document.Snapshot, info domain.BusinessInfo) bool {
	if snapshot == nil || info.IsZero() {
		return false
	}

	replacements := e.replacements(info)
	if len(replacements) == 0 {
		return false
	}

	changed := false
	snapshot.Walk(func(node *document.Node) {
		if node.Text != "" {
			if e.substituteText(node, replacements, info) {
				changed = true
			}
		}
		if node.HTML != "" {
			if next := replaceAll(node.HTML, replacements); next != node.HTML {
				node.HTML = next
				changed = true
			}
		}
		for key, value := range node.Attrs {
			if next := replaceAll(value, replacements); next != value {
				node.Attrs[key] = next
				changed = true
			}
		}
	})
	return changed
}

// substituteText rewrites a text leaf. Description substitution into a
// rich-text container renders markdown to an HTML leaf; everything else is a
// plain string replace.
func (e *Engine) substituteText(node *document.Node, replacements map[string]string, info domain.BusinessInfo) bool {
	text := node.Text
	if node.Attrs[richTextAttr] == "true" && strings.Contains(text, TokenDescription) && looksLikeMarkdown(info.Description) {
		if _, mapped := replacements[TokenDescription]; mapped {
			replaced := replaceAll(text, replacements)
			var buf bytes.Buffer
			if err := e.markdown.Convert([]byte(replaced), &buf); err == nil {
				node.Text = ""
				node.HTML = strings.TrimSpace(buf.String())
				return true
			}
		}
	}

	next := replaceAll(text, replacements)
	if next == text {
		return false
	}
	node.Text = next
	return true
}

// replacements maps tokens to their final values, skipping blank fields so
// unmapped copy survives untouched.
func (e *Engine) replacements(info domain.BusinessInfo) map[string]string {
	out := make(map[string]string, len(tokens))
	put := func(token, value string) {
		value = scrubTokens(strings.TrimSpace(value))
		if value != "" {
			out[token] = value
		}
	}
	put(TokenBusinessName, info.Name)
	put(TokenAddress, info.Address)
	put(TokenPhone, info.Phone)
	put(TokenHours, info.Hours)
	put(TokenSlogan, info.Slogan)
	put(TokenDescription, info.Description)
	put(TokenIndustry, info.Industry)
	if joined := joinServices(info.Services); joined != "" {
		out[TokenServices] = scrubTokens(joined)
	}
	return out
}

func replaceAll(text string, replacements map[string]string) string {
	for _, token := range tokens {
		value, ok := replacements[token]
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, token, value)
	}
	return text
}

// scrubTokens strips recognized tokens out of field values. Substituted text
// must never re-match as a token, otherwise applying twice would diverge from
// applying once.
func scrubTokens(value string) string {
	for _, token := range tokens {
		value = strings.ReplaceAll(value, token, "")
	}
	return strings.TrimSpace(value)
}

func joinServices(services []string) string {
	cleaned := make([]string, 0, len(services))
	for _, service := range services {
		if trimmed := strings.TrimSpace(service); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ", ")
}

func looksLikeMarkdown(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "\n\n") {
		return true
	}
	for _, prefix := range []string{"# ", "## ", "- ", "* ", "> "} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return strings.Contains(trimmed, "**") || strings.Contains(trimmed, "](")
}
