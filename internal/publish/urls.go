package publish

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrPlatformDomainRequired rejects URL builders without a hosting domain.
var ErrPlatformDomainRequired = errors.New("publish: platform domain required")

const siteGroup = "site"

// URLBuilderOption configures a URLBuilder.
type URLBuilderOption func(*URLBuilder)

// WithScheme overrides the URL scheme. Production sites serve over https;
// local stacks use http.
func WithScheme(scheme string) URLBuilderOption {
	return func(b *URLBuilder) {
		if scheme != "" {
			b.scheme = scheme
		}
	}
}

// URLBuilder resolves public site URLs. Every published site lives at its
// own subdomain of the platform domain, so the route group is rebuilt per
// lookup with the subdomain folded into the base URL.
type URLBuilder struct {
	scheme         string
	platformDomain string
}

// NewURLBuilder constructs a builder rooted at the platform hosting domain.
func NewURLBuilder(platformDomain string, opts ...URLBuilderOption) (*URLBuilder, error) {
	domain := strings.TrimSpace(strings.TrimSuffix(platformDomain, "."))
	if domain == "" {
		return nil, ErrPlatformDomainRequired
	}
	b := &URLBuilder{
		scheme:         "https",
		platformDomain: domain,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// PublishedURL returns the public root URL for a site subdomain.
func (b *URLBuilder) PublishedURL(subdomain string) (string, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return "", ErrSubdomainInvalid
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    siteGroup,
				BaseURL: fmt.Sprintf("%s://%s.%s", b.scheme, subdomain, b.platformDomain),
				Paths: map[string]string{
					"home": "/",
				},
			},
		},
	})
	return manager.Group(siteGroup).Builder("home").Build()
}
