package sitescmd

import (
	"context"
	"path"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/commands"
	"github.com/goliatone/go-sitebuilder/internal/generator"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/internal/publish"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// SaveProjectHandler persists editor state through the project service.
type SaveProjectHandler struct {
	inner *commands.Handler[SaveProjectCommand]
}

// NewSaveProjectHandler constructs a handler wired to the project service.
func NewSaveProjectHandler(service projects.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveProjectCommand]) *SaveProjectHandler {
	exec := func(ctx context.Context, msg SaveProjectCommand) error {
		_, err := service.Save(ctx, projects.SaveProjectInput{
			ProjectID:    msg.ProjectID,
			Name:         msg.Name,
			Snapshot:     msg.Snapshot,
			BusinessInfo: msg.BusinessInfo,
			SeoSettings:  msg.SeoSettings,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SaveProjectCommand]{
		commands.WithLogger[SaveProjectCommand](logger),
		commands.WithOperation[SaveProjectCommand]("project.save"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveProjectHandler{
		inner: commands.NewHandler[SaveProjectCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SaveProjectCommand].Execute.
func (h *SaveProjectHandler) Execute(ctx context.Context, msg SaveProjectCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishSiteHandler drives the publish lifecycle manager.
type PublishSiteHandler struct {
	inner *commands.Handler[PublishSiteCommand]
}

// NewPublishSiteHandler constructs a handler wired to the publish manager.
func NewPublishSiteHandler(manager *publish.Manager, logger interfaces.Logger, opts ...commands.HandlerOption[PublishSiteCommand]) *PublishSiteHandler {
	exec := func(ctx context.Context, msg PublishSiteCommand) error {
		_, err := manager.Publish(ctx, publish.Request{
			ProjectID: msg.ProjectID,
			Subdomain: msg.Subdomain,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishSiteCommand]{
		commands.WithLogger[PublishSiteCommand](logger),
		commands.WithOperation[PublishSiteCommand]("site.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishSiteHandler{
		inner: commands.NewHandler[PublishSiteCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishSiteCommand].Execute.
func (h *PublishSiteHandler) Execute(ctx context.Context, msg PublishSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnpublishSiteHandler removes a site from serving rotation.
type UnpublishSiteHandler struct {
	inner *commands.Handler[UnpublishSiteCommand]
}

// NewUnpublishSiteHandler constructs a handler wired to the publish manager.
func NewUnpublishSiteHandler(manager *publish.Manager, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishSiteCommand]) *UnpublishSiteHandler {
	exec := func(ctx context.Context, msg UnpublishSiteCommand) error {
		_, err := manager.Unpublish(ctx, msg.ProjectID)
		return err
	}

	handlerOpts := []commands.HandlerOption[UnpublishSiteCommand]{
		commands.WithLogger[UnpublishSiteCommand](logger),
		commands.WithOperation[UnpublishSiteCommand]("site.unpublish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishSiteHandler{
		inner: commands.NewHandler[UnpublishSiteCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UnpublishSiteCommand].Execute.
func (h *UnpublishSiteHandler) Execute(ctx context.Context, msg UnpublishSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportSiteHandler renders a project and writes the artifact to object
// storage under the owner's export prefix, named after the business.
type ExportSiteHandler struct {
	inner *commands.Handler[ExportSiteCommand]
}

// NewExportSiteHandler constructs a handler wired to the project service,
// generator, and blob storage.
func NewExportSiteHandler(service projects.Service, gen *generator.Generator, store interfaces.ObjectStorage, logger interfaces.Logger, opts ...commands.HandlerOption[ExportSiteCommand]) *ExportSiteHandler {
	exec := func(ctx context.Context, msg ExportSiteCommand) error {
		project, err := service.Get(ctx, msg.ProjectID)
		if err != nil {
			return err
		}

		// Downloads are offline artifacts: the publish address never leaks
		// into an export, even for a site that is currently live.
		html, err := gen.Generate(ctx, generator.Input{
			Snapshot:  project.Snapshot,
			Info:      project.BusinessInfo,
			Seo:       project.SeoSettings,
			ProjectID: project.ID.String(),
		})
		if err != nil {
			return err
		}

		filename := generator.ExportFilename(project.BusinessInfo, project.Name, project.TemplateSlug)
		key := path.Join("exports", project.OwnerID, project.ID.String(), filename)
		_, err = store.Put(ctx, interfaces.PutObjectRequest{
			Key:         key,
			Content:     strings.NewReader(html),
			Size:        int64(len(html)),
			ContentType: "text/html; charset=utf-8",
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ExportSiteCommand]{
		commands.WithLogger[ExportSiteCommand](logger),
		commands.WithOperation[ExportSiteCommand]("site.export"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExportSiteHandler{
		inner: commands.NewHandler[ExportSiteCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ExportSiteCommand].Execute.
func (h *ExportSiteHandler) Execute(ctx context.Context, msg ExportSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
