package seo

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Settings is the per-project SEO record. Zero values mean "fall back to a
// generated default at composition time"; guesses are never persisted back
// into the record.
type Settings struct {
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	SocialImageURL string   `json:"social_image_url,omitempty"`
	CanonicalURL   string   `json:"canonical_url,omitempty"`
	// NoIndex hides the page from search engines. The zero value keeps the
	// page indexable, matching a freshly created project.
	NoIndex bool `json:"no_index,omitempty"`
}

// Fallback supplies the defaults used for fields the author left empty,
// typically derived from Business Info and the template's own copy. The
// canonical fallback is resolved from the publish subdomain at generation
// time, since a draft may not have one yet.
type Fallback struct {
	Title          string
	Description    string
	Keywords       []string
	SocialImageURL string
	CanonicalURL   string
}

// HeadMetadata is the composed head-level metadata for a generated page.
type HeadMetadata struct {
	Title          string
	Description    string
	Keywords       []string
	SocialImageURL string
	CanonicalURL   string
	Robots         string
}

const (
	robotsIndex   = "index,follow"
	robotsNoIndex = "noindex,nofollow"
)

// ErrSettingsInvalid wraps validation failures on explicit settings values.
var ErrSettingsInvalid = errors.New("seo: settings are invalid")

// Validate checks explicitly set fields. Empty fields are always valid; they
// defer to fallbacks.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.CanonicalURL, validation.By(absoluteURL)),
		validation.Field(&s.SocialImageURL, validation.By(absoluteURL)),
	)
	if err != nil {
		return errors.Join(ErrSettingsInvalid, err)
	}
	return nil
}

// absoluteURL accepts empty values (they defer to fallbacks) and otherwise
// requires an absolute http(s) URL.
func absoluteURL(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return validation.NewError("seo.url_invalid", "must be an absolute URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validation.NewError("seo.url_scheme", "must use http or https")
	}
	return nil
}

// IsZero reports whether every field defers to its fallback.
func (s Settings) IsZero() bool {
	return strings.TrimSpace(s.Title) == "" &&
		strings.TrimSpace(s.Description) == "" &&
		len(s.Keywords) == 0 &&
		strings.TrimSpace(s.SocialImageURL) == "" &&
		strings.TrimSpace(s.CanonicalURL) == "" &&
		!s.NoIndex
}

// Clone copies the record so persisted state never shares slices with callers.
func (s Settings) Clone() Settings {
	copied := s
	if len(s.Keywords) > 0 {
		copied.Keywords = append([]string(nil), s.Keywords...)
	}
	return copied
}

// Compose resolves each field against its fallback: explicit values win,
// blanks defer. NoIndex has no partial state; false means fully indexable.
func Compose(settings Settings, fallback Fallback) HeadMetadata {
	meta := HeadMetadata{
		Title:          pick(settings.Title, fallback.Title),
		Description:    pick(settings.Description, fallback.Description),
		SocialImageURL: pick(settings.SocialImageURL, fallback.SocialImageURL),
		CanonicalURL:   pick(settings.CanonicalURL, fallback.CanonicalURL),
		Robots:         robotsIndex,
	}
	if settings.NoIndex {
		meta.Robots = robotsNoIndex
	}

	keywords := settings.Keywords
	if len(keywords) == 0 {
		keywords = fallback.Keywords
	}
	for _, keyword := range keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			meta.Keywords = append(meta.Keywords, trimmed)
		}
	}
	return meta
}

func pick(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(fallback)
}
