package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrSnapshotRequired = errors.New("generator: document snapshot required")
)

// SiteURLResolver maps a publish subdomain to the site's public URL.
type SiteURLResolver func(subdomain string) (string, error)

// Input carries everything Generate needs. Generation is pure: two calls
// with equal inputs produce byte-identical HTML.
type Input struct {
	Snapshot         *document.Snapshot
	Info             domain.BusinessInfo
	Seo              seo.Settings
	ProjectID        string
	PublishSubdomain string
}

// Option configures a generator.
type Option func(*Generator)

// WithSiteURLResolver installs the resolver used for canonical and Open
// Graph URLs when the input carries a publish subdomain.
func WithSiteURLResolver(resolver SiteURLResolver) Option {
	return func(g *Generator) {
		if resolver != nil {
			g.siteURL = resolver
		}
	}
}

// WithFormEndpoint sets the platform endpoint the embedded runtime posts
// form submissions to.
func WithFormEndpoint(endpoint string) Option {
	return func(g *Generator) {
		g.formEndpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator renders a project into one self-contained HTML document. The
// same artifact serves the hosted site and the user-facing export.
type Generator struct {
	siteURL      SiteURLResolver
	formEndpoint string
	logger       interfaces.Logger
}

// New constructs a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the standalone HTML artifact: inlined stylesheet,
// composed head metadata, document body, and the platform runtime snippet.
func (g *Generator) Generate(ctx context.Context, input Input) (string, error) {
	if input.Snapshot == nil || input.Snapshot.Root == nil {
		return "", ErrSnapshotRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	meta := seo.Compose(input.Seo, g.fallbackFor(input))

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("  <meta charset=\"utf-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	writeMetaName(&sb, "robots", meta.Robots)
	sb.WriteString("  <title>")
	sb.WriteString(html.EscapeString(meta.Title))
	sb.WriteString("</title>\n")
	writeMetaName(&sb, "description", meta.Description)
	if len(meta.Keywords) > 0 {
		writeMetaName(&sb, "keywords", strings.Join(meta.Keywords, ", "))
	}
	if meta.CanonicalURL != "" {
		fmt.Fprintf(&sb, "  <link rel=\"canonical\" href=\"%s\">\n", html.EscapeString(meta.CanonicalURL))
	}
	writeMetaProperty(&sb, "og:type", "website")
	writeMetaProperty(&sb, "og:title", meta.Title)
	writeMetaProperty(&sb, "og:description", meta.Description)
	writeMetaProperty(&sb, "og:url", meta.CanonicalURL)
	writeMetaProperty(&sb, "og:image", meta.SocialImageURL)
	writeMetaName(&sb, "twitter:card", "summary_large_image")

	if stylesheet := document.RenderStylesheet(input.Snapshot); stylesheet != "" {
		sb.WriteString("  <style>\n")
		sb.WriteString(stylesheet)
		if !strings.HasSuffix(stylesheet, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("  </style>\n")
	}

	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(document.RenderBody(input.Snapshot))
	sb.WriteString(g.runtimeSnippet(input.ProjectID))
	sb.WriteString("</body>\n</html>\n")

	artifact := sb.String()
	g.logger.Debug("site generated",
		"project_id", input.ProjectID,
		"bytes", len(artifact),
		"checksum", Checksum(artifact),
	)
	return artifact, nil
}

// fallbackFor derives head metadata defaults from the business facts so a
// site published without explicit SEO settings still carries sensible tags.
func (g *Generator) fallbackFor(input Input) seo.Fallback {
	fallback := seo.Fallback{
		Title:       strings.TrimSpace(input.Info.Name),
		Description: strings.TrimSpace(input.Info.Slogan),
	}
	if fallback.Title == "" {
		fallback.Title = "My Website"
	} else if slogan := strings.TrimSpace(input.Info.Slogan); slogan != "" {
		fallback.Title = fallback.Title + " | " + slogan
	}
	if fallback.Description == "" {
		fallback.Description = firstLine(input.Info.Description)
	}
	for _, service := range input.Info.Services {
		if trimmed := strings.TrimSpace(service); trimmed != "" {
			fallback.Keywords = append(fallback.Keywords, trimmed)
		}
	}
	if industry := strings.TrimSpace(input.Info.Industry); industry != "" {
		fallback.Keywords = append(fallback.Keywords, industry)
	}

	if g.siteURL != nil && input.PublishSubdomain != "" {
		if url, err := g.siteURL(input.PublishSubdomain); err == nil {
			fallback.CanonicalURL = url
		} else {
			g.logger.Warn("site url resolution failed",
				"subdomain", input.PublishSubdomain,
				"error", err,
			)
		}
	}
	return fallback
}

// runtimeSnippet embeds the small script that wires form submissions and the
// page-view beacon to the platform. The endpoint URLs are resolved at
// generation time so the artifact carries literal addresses. Omitted entirely
// when no endpoint is configured, keeping exports fully offline-capable.
func (g *Generator) runtimeSnippet(projectID string) string {
	if g.formEndpoint == "" || projectID == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"__FORMS_URL__", g.formEndpoint+"/forms",
		"__EVENTS_URL__", g.formEndpoint+"/events",
		"__PROJECT__", projectID,
	)
	return replacer.Replace(runtimeScript)
}

const runtimeScript = `<script>
(function () {
  var formsURL = "__FORMS_URL__";
  var eventsURL = "__EVENTS_URL__";
  var project = "__PROJECT__";
  document.addEventListener("submit", function (event) {
    var form = event.target;
    if (!form || form.tagName !== "FORM") {
      return;
    }
    event.preventDefault();
    var fields = {};
    new FormData(form).forEach(function (value, key) {
      fields[key] = value;
    });
    fetch(formsURL, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ project: project, fields: fields })
    }).then(function () {
      form.reset();
    });
  });
  if (navigator.sendBeacon) {
    navigator.sendBeacon(
      eventsURL,
      JSON.stringify({ project: project, event: "page_view", path: location.pathname })
    );
  }
})();
</script>
`

// Checksum returns the sha256 hex digest of an artifact, used to detect
// whether a republish actually changed the served bytes.
func Checksum(artifact string) string {
	sum := sha256.Sum256([]byte(artifact))
	return hex.EncodeToString(sum[:])
}

func writeMetaName(sb *strings.Builder, name, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(sb, "  <meta name=\"%s\" content=\"%s\">\n", name, html.EscapeString(content))
}

func writeMetaProperty(sb *strings.Builder, property, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(sb, "  <meta property=\"%s\" content=\"%s\">\n", property, html.EscapeString(content))
}

// firstLine trims a multi-line description down to its opening line so
// markdown-formatted copy yields a usable meta description.
func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(strings.TrimLeft(text, "#*> "))
}
