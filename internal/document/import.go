package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/goliatone/go-sitebuilder/internal/identity"
)

// ErrSeedInvalid indicates a legacy HTML seed could not be parsed into a
// document. Callers must not initialize an editing session on this error.
var ErrSeedInvalid = errors.New("document: seed markup could not be parsed")

// seedPolicy sanitizes imported markup. Legacy seeds come from externally
// authored template files, so scripts and event handlers are stripped while
// styling attributes survive.
func seedPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style", "class", "id").Globally()
	policy.AllowElements(
		"section", "header", "footer", "nav", "main", "article", "aside",
		"figure", "figcaption", "span", "button", "form", "label", "select",
		"option", "textarea",
	)
	policy.AllowAttrs("type", "name", "placeholder", "value").OnElements("input", "textarea", "select", "button")
	policy.AllowElements("input")
	policy.AllowAttrs("action", "method").OnElements("form")
	return policy
}

// ImportHTML converts a legacy static HTML document into a Snapshot: body
// markup becomes the component tree and <style> elements are extracted into
// stylesheet rules. Node identifiers derive from the template slug and tree
// position so repeated imports of the same seed are identical.
func ImportHTML(templateSlug, markup string) (*Snapshot, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrSeedInvalid
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	stylesheet := extractStyleRules(doc)
	body := findElement(doc, "body")
	if body == nil {
		return nil, ErrSeedInvalid
	}

	// Re-render the body without style/script elements, sanitize it, and
	// parse again so the tree is built only from markup that survived the
	// policy.
	var raw strings.Builder
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if isElement(child, "style") || isElement(child, "script") {
			continue
		}
		if err := html.Render(&raw, child); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
		}
	}

	sanitized := seedPolicy().Sanitize(raw.String())
	fragment, err := html.Parse(strings.NewReader(sanitized))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}
	sanitizedBody := findElement(fragment, "body")
	if sanitizedBody == nil {
		return nil, ErrSeedInvalid
	}

	root := &Node{
		ID:  identity.NodeUUID(templateSlug, "root").String(),
		Tag: "div",
	}
	index := 0
	for child := sanitizedBody.FirstChild; child != nil; child = child.NextSibling {
		converted := convertNode(child, templateSlug, fmt.Sprintf("root.%d", index))
		if converted == nil {
			continue
		}
		root.Children = append(root.Children, converted)
		index++
	}
	if len(root.Children) == 0 {
		return nil, ErrSeedInvalid
	}

	return &Snapshot{
		Version:    SnapshotVersion,
		Root:       root,
		Stylesheet: stylesheet,
	}, nil
}

func convertNode(src *html.Node, templateSlug, path string) *Node {
	switch src.Type {
	case html.TextNode:
		text := strings.TrimSpace(src.Data)
		if text == "" {
			return nil
		}
		return &Node{
			ID:   identity.NodeUUID(templateSlug, path).String(),
			Tag:  "span",
			Text: text,
		}
	case html.ElementNode:
	default:
		return nil
	}

	node := &Node{
		ID:  identity.NodeUUID(templateSlug, path).String(),
		Tag: strings.ToLower(src.Data),
	}
	for _, attr := range src.Attr {
		if node.Attrs == nil {
			node.Attrs = map[string]string{}
		}
		node.Attrs[attr.Key] = attr.Val
	}

	// Elements with a single text child collapse into text leaves so
	// placeholder substitution sees flat copy.
	if src.FirstChild != nil && src.FirstChild == src.LastChild && src.FirstChild.Type == html.TextNode {
		node.Text = strings.TrimSpace(src.FirstChild.Data)
		return node
	}

	index := 0
	for child := src.FirstChild; child != nil; child = child.NextSibling {
		converted := convertNode(child, templateSlug, fmt.Sprintf("%s.%d", path, index))
		if converted == nil {
			continue
		}
		node.Children = append(node.Children, converted)
		index++
	}
	return node
}

func extractStyleRules(doc *html.Node) []StyleRule {
	var sheets []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if isElement(n, "style") {
			var text strings.Builder
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					text.WriteString(child.Data)
				}
			}
			if trimmed := strings.TrimSpace(text.String()); trimmed != "" {
				sheets = append(sheets, trimmed)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(doc)

	var rules []StyleRule
	for _, sheet := range sheets {
		rules = append(rules, parseStylesheet(sheet)...)
	}
	return rules
}

// parseStylesheet splits CSS text into rules, keeping at-rule blocks whole.
func parseStylesheet(sheet string) []StyleRule {
	var rules []StyleRule
	var selector strings.Builder
	var body strings.Builder
	depth := 0

	for _, r := range sheet {
		switch r {
		case '{':
			depth++
			if depth == 1 {
				continue
			}
		case '}':
			depth--
			if depth == 0 {
				sel := strings.TrimSpace(selector.String())
				if sel != "" {
					rules = append(rules, StyleRule{
						Selector:     sel,
						Declarations: strings.TrimSpace(body.String()),
					})
				}
				selector.Reset()
				body.Reset()
				continue
			}
			if depth < 0 {
				depth = 0
				continue
			}
		}
		if depth == 0 {
			selector.WriteRune(r)
		} else {
			body.WriteRune(r)
		}
	}
	return rules
}

func findElement(n *html.Node, tag string) *html.Node {
	if isElement(n, tag) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}
