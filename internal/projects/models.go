package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/seo"
)

// Project is the aggregate root for a builder site: the durable draft
// snapshot, the business facts and SEO settings saved alongside it, and the
// publish lifecycle state.
//
// Invariants: Subdomain is set if and only if the status has ever reached
// published; PublishedHTML is present only while status is published.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID            uuid.UUID           `bun:",pk,type:uuid"                  json:"id"`
	OwnerID       string              `bun:"owner_id,notnull"               json:"owner_id"`
	TemplateSlug  string              `bun:"template_slug,notnull"          json:"template_slug"`
	Name          string              `bun:"project_name,notnull"           json:"project_name"`
	Snapshot      *document.Snapshot  `bun:"document_snapshot,type:jsonb"   json:"document_snapshot,omitempty"`
	BusinessInfo  domain.BusinessInfo `bun:"business_info,type:jsonb"       json:"business_info"`
	SeoSettings   seo.Settings        `bun:"seo_settings,type:jsonb"        json:"seo_settings"`
	Status        domain.Status       `bun:"status,notnull,default:'draft'" json:"status"`
	Subdomain     *string             `bun:"subdomain,nullzero,unique"      json:"subdomain,omitempty"`
	PublishedHTML *string             `bun:"published_html,nullzero"        json:"published_html,omitempty"`
	CreatedAt     time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SubdomainValue returns the assigned subdomain or the empty string.
func (p *Project) SubdomainValue() string {
	if p == nil || p.Subdomain == nil {
		return ""
	}
	return *p.Subdomain
}

// IsPublished reports whether the project's artifact is in serving rotation.
func (p *Project) IsPublished() bool {
	return p != nil && p.Status == domain.StatusPublished
}
