package sitescmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/seo"
)

const (
	saveProjectMessageType   = "sitebuilder.project.save"
	publishSiteMessageType   = "sitebuilder.site.publish"
	unpublishSiteMessageType = "sitebuilder.site.unpublish"
	exportSiteMessageType    = "sitebuilder.site.export"
)

// SaveProjectCommand persists the current editor state for a project.
type SaveProjectCommand struct {
	ProjectID    uuid.UUID            `json:"project_id"`
	Name         *string              `json:"name,omitempty"`
	Snapshot     *document.Snapshot   `json:"snapshot,omitempty"`
	BusinessInfo *domain.BusinessInfo `json:"business_info,omitempty"`
	SeoSettings  *seo.Settings        `json:"seo_settings,omitempty"`
}

// Type implements command.Message.
func (SaveProjectCommand) Type() string { return saveProjectMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SaveProjectCommand) Validate() error {
	errs := validation.Errors{}
	if m.ProjectID == uuid.Nil {
		errs["project_id"] = validation.NewError("sitebuilder.project.save.project_id_required", "project_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishSiteCommand takes a project live at a subdomain. Subdomain may be
// empty on republish, since the assigned one is reused.
type PublishSiteCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
	Subdomain string    `json:"subdomain,omitempty"`
}

// Type implements command.Message.
func (PublishSiteCommand) Type() string { return publishSiteMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m PublishSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.ProjectID == uuid.Nil {
		errs["project_id"] = validation.NewError("sitebuilder.site.publish.project_id_required", "project_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UnpublishSiteCommand pulls a site out of serving rotation.
type UnpublishSiteCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// Type implements command.Message.
func (UnpublishSiteCommand) Type() string { return unpublishSiteMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m UnpublishSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.ProjectID == uuid.Nil {
		errs["project_id"] = validation.NewError("sitebuilder.site.unpublish.project_id_required", "project_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExportSiteCommand renders a project into a downloadable standalone HTML file.
type ExportSiteCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// Type implements command.Message.
func (ExportSiteCommand) Type() string { return exportSiteMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m ExportSiteCommand) Validate() error {
	errs := validation.Errors{}
	if m.ProjectID == uuid.Nil {
		errs["project_id"] = validation.NewError("sitebuilder.site.export.project_id_required", "project_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
