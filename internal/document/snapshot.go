package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// SnapshotVersion identifies the current snapshot payload format.
const SnapshotVersion = 1

var (
	ErrSnapshotEmpty   = errors.New("document: snapshot has no content")
	ErrSnapshotInvalid = errors.New("document: snapshot payload is invalid")
)

// Snapshot is a serialized capture of the document under edit: a component
// tree plus the stylesheet rules that style it. A snapshot is immutable once
// captured; a later capture replaces it, never merges.
type Snapshot struct {
	Version    int         `json:"version"`
	Root       *Node       `json:"root"`
	Stylesheet []StyleRule `json:"stylesheet,omitempty"`
}

// Node is a styled content node. Text carries escaped plain text; HTML carries
// a raw markup leaf (used by rich-text containers and legacy imports). A node
// holds either children or leaf content, never both meaningfully.
type Node struct {
	ID       string            `json:"id"`
	Tag      string            `json:"tag"`
	Text     string            `json:"text,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// StyleRule is a single stylesheet rule captured from the document.
type StyleRule struct {
	Selector     string `json:"selector"`
	Declarations string `json:"declarations"`
}

// Encode serializes the snapshot to its canonical JSON payload.
func (s *Snapshot) Encode() ([]byte, error) {
	if s == nil || s.Root == nil {
		return nil, ErrSnapshotEmpty
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("document: encode snapshot: %w", err)
	}
	return payload, nil
}

// Decode parses and validates a snapshot payload.
func Decode(payload []byte) (*Snapshot, error) {
	if len(payload) == 0 {
		return nil, ErrSnapshotEmpty
	}
	if err := ValidateSnapshotPayload(payload); err != nil {
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if snapshot.Root == nil {
		return nil, ErrSnapshotEmpty
	}
	if snapshot.Version == 0 {
		snapshot.Version = SnapshotVersion
	}
	return &snapshot, nil
}

// Clone performs a deep copy so callers can mutate without sharing state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	copied := &Snapshot{Version: s.Version, Root: s.Root.Clone()}
	if len(s.Stylesheet) > 0 {
		copied.Stylesheet = append([]StyleRule(nil), s.Stylesheet...)
	}
	return copied
}

// Clone deep-copies the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	copied := &Node{ID: n.ID, Tag: n.Tag, Text: n.Text, HTML: n.HTML}
	if len(n.Attrs) > 0 {
		copied.Attrs = maps.Clone(n.Attrs)
	}
	if len(n.Children) > 0 {
		copied.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			copied.Children[i] = child.Clone()
		}
	}
	return copied
}

// Walk visits every node in the tree, depth first.
func (s *Snapshot) Walk(visit func(*Node)) {
	if s == nil || s.Root == nil || visit == nil {
		return
	}
	walkNode(s.Root, visit)
}

func walkNode(node *Node, visit func(*Node)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children {
		walkNode(child, visit)
	}
}

// FindByID returns the first node carrying the identifier, or nil.
func (s *Snapshot) FindByID(id string) *Node {
	var found *Node
	s.Walk(func(node *Node) {
		if found == nil && node.ID == id {
			found = node
		}
	})
	return found
}

// SortedAttrKeys returns the node's attribute names in stable order. Rendering
// iterates attributes through this so identical snapshots produce identical
// markup.
func (n *Node) SortedAttrKeys() []string {
	if len(n.Attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(n.Attrs))
	for key := range n.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep equality between two snapshots.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	left, err := s.Encode()
	if err != nil {
		return false
	}
	right, err := other.Encode()
	if err != nil {
		return false
	}
	return string(left) == string(right)
}

// Stylesheet text joins the captured rules back into a single sheet.
func StylesheetText(rules []StyleRule) string {
	if len(rules) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, rule := range rules {
		selector := strings.TrimSpace(rule.Selector)
		if selector == "" {
			continue
		}
		sb.WriteString(selector)
		sb.WriteString(" { ")
		sb.WriteString(strings.TrimSpace(rule.Declarations))
		sb.WriteString(" }\n")
	}
	return sb.String()
}
