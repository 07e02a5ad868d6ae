package placeholder

import (
	"strings"
	"testing"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
)

func seedSnapshot() *document.Snapshot {
	return &document.Snapshot{
		Version: document.SnapshotVersion,
		Root: &document.Node{
			ID:  "root",
			Tag: "div",
			Children: []*document.Node{
				{ID: "headline", Tag: "h1", Text: "Welcome to {{business_name}}"},
				{ID: "tagline", Tag: "p", Text: "{{business_slogan}}"},
				{ID: "contact", Tag: "p", Text: "Call {{business_phone}} or visit {{business_address}}"},
				{ID: "services", Tag: "p", Text: "We offer {{business_services}}"},
				{
					ID:    "about",
					Tag:   "div",
					Text:  "{{business_description}}",
					Attrs: map[string]string{"data-richtext": "true"},
				},
				{
					ID:    "cta",
					Tag:   "a",
					Text:  "Book now",
					Attrs: map[string]string{"href": "tel:{{business_phone}}"},
				},
			},
		},
	}
}

func fullInfo() domain.BusinessInfo {
	return domain.BusinessInfo{
		Name:     "Rosie's Bakery",
		Address:  "12 Main St, Springfield",
		Phone:    "555-0142",
		Hours:    "Mon-Sat 7am-3pm",
		Slogan:   "Baked fresh every morning",
		Services: []string{"Sourdough", "  Pastries ", "", "Custom Cakes"},
		Industry: "bakery",
	}
}

func textOf(t *testing.T, snapshot *document.Snapshot, id string) string {
	t.Helper()
	node := snapshot.FindByID(id)
	if node == nil {
		t.Fatalf("node %q missing", id)
	}
	return node.Text
}

func TestApplySubstitutesKnownTokens(t *testing.T) {
	engine := New()
	result := engine.Apply(seedSnapshot(), fullInfo())

	if got := textOf(t, result, "headline"); got != "Welcome to Rosie's Bakery" {
		t.Fatalf("headline = %q", got)
	}
	if got := textOf(t, result, "tagline"); got != "Baked fresh every morning" {
		t.Fatalf("tagline = %q", got)
	}
	if got := textOf(t, result, "contact"); got != "Call 555-0142 or visit 12 Main St, Springfield" {
		t.Fatalf("contact = %q", got)
	}
}

func TestApplyJoinsServicesWithCommas(t *testing.T) {
	engine := New()
	result := engine.Apply(seedSnapshot(), fullInfo())

	if got := textOf(t, result, "services"); got != "We offer Sourdough, Pastries, Custom Cakes" {
		t.Fatalf("services = %q", got)
	}
}

func TestApplyRewritesAttributeValues(t *testing.T) {
	engine := New()
	result := engine.Apply(seedSnapshot(), fullInfo())

	cta := result.FindByID("cta")
	if cta == nil {
		t.Fatalf("cta node missing")
	}
	if got := cta.Attrs["href"]; got != "tel:555-0142" {
		t.Fatalf("href = %q", got)
	}
}

func TestApplyLeavesBlankFieldsUntouched(t *testing.T) {
	engine := New()
	result := engine.Apply(seedSnapshot(), domain.BusinessInfo{Name: "Rosie's Bakery"})

	// Only the name maps; other template copy keeps its placeholders so the
	// canvas still shows editable markers.
	if got := textOf(t, result, "headline"); got != "Welcome to Rosie's Bakery" {
		t.Fatalf("headline = %q", got)
	}
	if got := textOf(t, result, "tagline"); got != "{{business_slogan}}" {
		t.Fatalf("tagline = %q", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	engine := New()
	info := fullInfo()
	// A field value containing a token must not re-expand on a second pass.
	info.Slogan = "Try {{business_name}} today"

	once := engine.Apply(seedSnapshot(), info)
	twice := engine.Apply(once, info)

	if !once.Equal(twice) {
		t.Fatalf("second application diverged from first")
	}
}

func TestApplyInPlaceReportsChange(t *testing.T) {
	engine := New()

	snapshot := seedSnapshot()
	if !engine.ApplyInPlace(snapshot, fullInfo()) {
		t.Fatalf("substitution with matches reported no change")
	}
	if engine.ApplyInPlace(snapshot, fullInfo()) {
		t.Fatalf("second pass reported a change")
	}
	if engine.ApplyInPlace(seedSnapshot(), domain.BusinessInfo{}) {
		t.Fatalf("empty info reported a change")
	}
}

func TestApplyRendersMarkdownDescriptionsInRichTextNodes(t *testing.T) {
	engine := New()
	info := fullInfo()
	info.Description = "# Our Story\n\nFamily owned since 1998."

	result := engine.Apply(seedSnapshot(), info)

	about := result.FindByID("about")
	if about == nil {
		t.Fatalf("about node missing")
	}
	if about.Text != "" {
		t.Fatalf("rich-text node kept plain text %q", about.Text)
	}
	if !strings.Contains(about.HTML, "<h1") || !strings.Contains(about.HTML, "Our Story") {
		t.Fatalf("markdown heading not rendered: %q", about.HTML)
	}
	if !strings.Contains(about.HTML, "Family owned since 1998.") {
		t.Fatalf("markdown body not rendered: %q", about.HTML)
	}
}

func TestApplyPlainDescriptionStaysText(t *testing.T) {
	engine := New()
	info := fullInfo()
	info.Description = "Family owned since 1998."

	result := engine.Apply(seedSnapshot(), info)

	about := result.FindByID("about")
	if about == nil {
		t.Fatalf("about node missing")
	}
	if about.HTML != "" {
		t.Fatalf("plain description rendered as markup: %q", about.HTML)
	}
	if about.Text != "Family owned since 1998." {
		t.Fatalf("about text = %q", about.Text)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	engine := New()
	original := seedSnapshot()

	engine.Apply(original, fullInfo())

	if got := textOf(t, original, "headline"); got != "Welcome to {{business_name}}" {
		t.Fatalf("input snapshot mutated: %q", got)
	}
}
