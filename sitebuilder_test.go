package sitebuilder_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"

	sitebuilder "github.com/goliatone/go-sitebuilder"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/internal/publish"
	"github.com/goliatone/go-sitebuilder/internal/templates"
)

const bakerySeed = `{
  "name": "Bakery Starter",
  "slug": "bakery-starter",
  "seo": {"keywords": ["bakery"]},
  "snapshot": {
    "version": 1,
    "root": {
      "id": "root",
      "tag": "div",
      "children": [
        {"id": "headline", "tag": "h1", "text": "Welcome to {{business_name}}"}
      ]
    }
  }
}`

func testConfig() sitebuilder.Config {
	cfg := sitebuilder.DefaultConfig()
	cfg.Storage.DSN = ""
	cfg.Assets.BaseDir = ""
	cfg.Publish.PlatformDomain = "sites.example.com"
	return cfg
}

func newTestModule(t *testing.T) *sitebuilder.Module {
	t.Helper()

	module, err := sitebuilder.New(testConfig(), di.WithSeedFS(fstest.MapFS{
		"bakery-starter.json": {Data: []byte(bakerySeed)},
	}))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() {
		if err := module.Close(); err != nil {
			t.Fatalf("close module: %v", err)
		}
	})
	return module
}

func TestModuleLoadsSeedCatalog(t *testing.T) {
	module := newTestModule(t)

	seed, err := module.Templates().Get("bakery-starter")
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if seed.Name != "Bakery Starter" {
		t.Fatalf("seed name = %q", seed.Name)
	}
	if len(module.Templates().List()) != 1 {
		t.Fatalf("catalog size = %d", len(module.Templates().List()))
	}
}

func TestNewSessionFromSeed(t *testing.T) {
	module := newTestModule(t)

	sess, err := module.NewSession(context.Background(), sitebuilder.SessionRequest{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if sess.Dirty() {
		t.Fatalf("fresh session is dirty")
	}

	snapshot, err := sess.Adapter().Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if snapshot.FindByID("headline") == nil {
		t.Fatalf("seed document not loaded")
	}
	// Seed SEO defaults ride along into the session.
	if len(sess.SeoSettings().Keywords) != 1 {
		t.Fatalf("seed seo defaults missing: %+v", sess.SeoSettings())
	}
}

func TestNewSessionUnknownTemplate(t *testing.T) {
	module := newTestModule(t)

	_, err := module.NewSession(context.Background(), sitebuilder.SessionRequest{
		OwnerID:      "owner-1",
		TemplateSlug: "missing",
	})
	if !errors.Is(err, templates.ErrSeedNotFound) {
		t.Fatalf("got %v, want %v", err, templates.ErrSeedNotFound)
	}
}

func TestEndToEndEditSavePublish(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	sess, err := module.NewSession(ctx, sitebuilder.SessionRequest{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
		Name:         "Rosie's Site",
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := sess.SetBusinessInfo(sitebuilder.BusinessInfo{
		Name:   "Rosie Bakery",
		Slogan: "Baked fresh every morning",
	}); err != nil {
		t.Fatalf("set business info: %v", err)
	}
	if !sess.Dirty() {
		t.Fatalf("substitution did not mark dirty")
	}

	if err := sess.SaveNow(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	projectID := sess.ProjectID()
	if projectID == uuid.Nil {
		t.Fatalf("save did not create a project")
	}

	result, err := module.Publisher().Publish(ctx, publish.Request{
		ProjectID: projectID,
		Subdomain: "rosies",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.URL != "https://rosies.sites.example.com/" {
		t.Fatalf("url = %q", result.URL)
	}
	if !strings.Contains(*result.Project.PublishedHTML, "Welcome to Rosie Bakery") {
		t.Fatalf("published artifact missing substituted copy:\n%s", *result.Project.PublishedHTML)
	}

	// The stored project serves lookups by public address.
	found, err := module.Projects().GetBySubdomain(ctx, "rosies")
	if err != nil {
		t.Fatalf("get by subdomain: %v", err)
	}
	if found.ID != projectID {
		t.Fatalf("lookup returned project %s, want %s", found.ID, projectID)
	}
}

func TestNewSessionResumesSavedProject(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	first, err := module.NewSession(ctx, sitebuilder.SessionRequest{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
		Name:         "Draft",
	})
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	if err := first.SetBusinessInfo(sitebuilder.BusinessInfo{Name: "Rosie Bakery"}); err != nil {
		t.Fatalf("set info: %v", err)
	}
	if err := first.SaveNow(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	resumed, err := module.NewSession(ctx, sitebuilder.SessionRequest{
		OwnerID:   "owner-1",
		ProjectID: first.ProjectID(),
	})
	if err != nil {
		t.Fatalf("resume session: %v", err)
	}

	if resumed.Dirty() {
		t.Fatalf("resumed session starts dirty")
	}
	if resumed.ProjectID() != first.ProjectID() {
		t.Fatalf("resumed session lost the project id")
	}
	snapshot, err := resumed.Adapter().Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got := snapshot.FindByID("headline").Text; got != "Welcome to Rosie Bakery" {
		t.Fatalf("resumed headline = %q", got)
	}
	if resumed.BusinessInfo().Name != "Rosie Bakery" {
		t.Fatalf("business info not restored")
	}
}

func TestStartAutosaveHonorsFeatureFlag(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Autosave = false

	module, err := sitebuilder.New(cfg, di.WithSeedFS(fstest.MapFS{
		"bakery-starter.json": {Data: []byte(bakerySeed)},
	}))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	sess, err := module.NewSession(context.Background(), sitebuilder.SessionRequest{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	if saver := module.StartAutosave(context.Background(), sess); saver != nil {
		t.Fatalf("autosave started with the feature disabled")
	}
}
