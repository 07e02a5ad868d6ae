package document

import (
	"html"
	"strings"
)

// voidElements render without closing tags.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {},
	"track": {}, "wbr": {},
}

// RenderBody renders the component tree as HTML markup. Output is
// deterministic: attributes are emitted in sorted order and nothing depends on
// clocks or random identifiers.
func RenderBody(snapshot *Snapshot) string {
	if snapshot == nil || snapshot.Root == nil {
		return ""
	}
	var sb strings.Builder
	renderNode(&sb, snapshot.Root, 0)
	return sb.String()
}

func renderNode(sb *strings.Builder, node *Node, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	tag := strings.ToLower(strings.TrimSpace(node.Tag))
	if tag == "" {
		tag = "div"
	}

	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(tag)
	for _, key := range node.SortedAttrKeys() {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(node.Attrs[key]))
		sb.WriteString(`"`)
	}
	if _, void := voidElements[tag]; void {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">")

	switch {
	case node.HTML != "":
		sb.WriteString(node.HTML)
	case node.Text != "":
		sb.WriteString(html.EscapeString(node.Text))
	}

	if len(node.Children) > 0 {
		sb.WriteString("\n")
		for _, child := range node.Children {
			renderNode(sb, child, depth+1)
		}
		sb.WriteString(indent)
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteString(">\n")
}

// RenderStylesheet emits the snapshot's stylesheet rules as CSS text.
func RenderStylesheet(snapshot *Snapshot) string {
	if snapshot == nil {
		return ""
	}
	return StylesheetText(snapshot.Stylesheet)
}
