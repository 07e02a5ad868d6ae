package session_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/assets"
	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/placeholder"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/internal/session"
)

var testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	session  *session.Session
	projects projects.Service
	assets   assets.Service
	repo     *projects.MemoryRepository
}

func newFixture(t *testing.T, cfg session.Config, opts ...session.Option) *fixture {
	t.Helper()

	repo := projects.NewMemoryRepository()
	projectsSvc := projects.NewService(repo, projects.WithClock(func() time.Time { return testTime }))

	return newFixtureWithServices(t, cfg, projectsSvc, repo, opts...)
}

func newFixtureWithServices(t *testing.T, cfg session.Config, projectsSvc projects.Service, repo *projects.MemoryRepository, opts ...session.Option) *fixture {
	t.Helper()

	assetsSvc := assets.NewService(assets.NewMemoryRepository(), assets.NewMemoryStorage("https://cdn.example.com"))

	if cfg.OwnerID == "" {
		cfg.OwnerID = "owner-1"
	}
	if cfg.TemplateSlug == "" {
		cfg.TemplateSlug = "bakery-starter"
	}
	cfg.AdapterOptions = append(cfg.AdapterOptions, document.WithSubstituter(placeholder.New()))

	opts = append([]session.Option{session.WithClock(func() time.Time { return testTime })}, opts...)
	sess, err := session.New(document.NewMemoryEngine(), projectsSvc, assetsSvc, cfg, opts...)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	source := document.Source{Snapshot: &document.Snapshot{
		Version: document.SnapshotVersion,
		Root: &document.Node{
			ID:  "root",
			Tag: "div",
			Children: []*document.Node{
				{ID: "headline", Tag: "h1", Text: "Welcome to {{business_name}}"},
			},
		},
	}}
	if err := sess.Adapter().Load(source); err != nil {
		t.Fatalf("load document: %v", err)
	}

	return &fixture{session: sess, projects: projectsSvc, assets: assetsSvc, repo: repo}
}

func editHeadline(t *testing.T, sess *session.Session, text string) {
	t.Helper()
	err := sess.Adapter().Apply(func(snapshot *document.Snapshot) {
		snapshot.FindByID("headline").Text = text
	})
	if err != nil {
		t.Fatalf("apply edit: %v", err)
	}
}

func TestNewSessionValidation(t *testing.T) {
	projectsSvc := projects.NewService(projects.NewMemoryRepository())

	if _, err := session.New(nil, projectsSvc, nil, session.Config{OwnerID: "o", TemplateSlug: "t"}); !errors.Is(err, session.ErrEngineRequired) {
		t.Fatalf("nil engine: got %v", err)
	}
	if _, err := session.New(document.NewMemoryEngine(), nil, nil, session.Config{OwnerID: "o", TemplateSlug: "t"}); !errors.Is(err, session.ErrProjectsRequired) {
		t.Fatalf("nil projects: got %v", err)
	}
	if _, err := session.New(document.NewMemoryEngine(), projectsSvc, nil, session.Config{TemplateSlug: "t"}); !errors.Is(err, session.ErrOwnerRequired) {
		t.Fatalf("no owner: got %v", err)
	}
	if _, err := session.New(document.NewMemoryEngine(), projectsSvc, nil, session.Config{OwnerID: "o"}); !errors.Is(err, session.ErrTemplateRequired) {
		t.Fatalf("no template: got %v", err)
	}
}

func TestDocumentEditsMarkSessionDirty(t *testing.T) {
	fx := newFixture(t, session.Config{})

	if fx.session.Dirty() {
		t.Fatalf("fresh session is dirty")
	}
	editHeadline(t, fx.session, "New headline")
	if !fx.session.Dirty() {
		t.Fatalf("edit did not mark session dirty")
	}
}

func TestUndoRedoMarkSessionDirty(t *testing.T) {
	fx := newFixture(t, session.Config{})
	editHeadline(t, fx.session, "New headline")

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fx.session.Dirty() {
		t.Fatalf("session dirty after save")
	}

	if !fx.session.Adapter().Undo() {
		t.Fatalf("undo failed")
	}
	if !fx.session.Dirty() {
		t.Fatalf("undo did not mark session dirty")
	}
}

func TestFirstSaveCreatesProject(t *testing.T) {
	fx := newFixture(t, session.Config{Name: "Rosie's Site"})
	editHeadline(t, fx.session, "New headline")

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	id := fx.session.ProjectID()
	if id == uuid.Nil {
		t.Fatalf("first save did not adopt a project id")
	}
	stored, err := fx.projects.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.Name != "Rosie's Site" {
		t.Fatalf("name = %q", stored.Name)
	}
	if stored.Snapshot.FindByID("headline").Text != "New headline" {
		t.Fatalf("snapshot not captured")
	}
	if fx.session.Dirty() {
		t.Fatalf("session dirty after successful save")
	}
	if !fx.session.LastSavedAt().Equal(testTime) {
		t.Fatalf("last saved = %v", fx.session.LastSavedAt())
	}
}

func TestFirstSaveClaimsUnsavedAssets(t *testing.T) {
	fx := newFixture(t, session.Config{})

	_, err := fx.assets.Upload(context.Background(), assets.UploadRequest{
		OwnerID: "owner-1",
		Name:    "logo.png",
		Content: strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	claimed, err := fx.assets.ListForProject(context.Background(), "owner-1", fx.session.ProjectID().String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("claimed %d assets, want 1", len(claimed))
	}
}

func TestSubsequentSavesUpdateSameProject(t *testing.T) {
	fx := newFixture(t, session.Config{})

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	id := fx.session.ProjectID()

	editHeadline(t, fx.session, "Second draft")
	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if fx.session.ProjectID() != id {
		t.Fatalf("save minted a new project id")
	}
	stored, err := fx.projects.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Snapshot.FindByID("headline").Text != "Second draft" {
		t.Fatalf("snapshot not updated")
	}
}

func TestAutosaveSkipsCleanSession(t *testing.T) {
	fx := newFixture(t, session.Config{})

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, err := fx.projects.Get(context.Background(), fx.session.ProjectID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := fx.session.Autosave(context.Background()); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	after, err := fx.projects.Get(context.Background(), fx.session.ProjectID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("clean autosave wrote the project")
	}
}

func TestAutosaveSkipsNeverSavedProject(t *testing.T) {
	fx := newFixture(t, session.Config{})
	editHeadline(t, fx.session, "Unsaved work")

	if err := fx.session.Autosave(context.Background()); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	// Autosave never creates the project row; only an explicit save does.
	if fx.session.ProjectID() != uuid.Nil {
		t.Fatalf("autosave created a project")
	}
	if !fx.session.Dirty() {
		t.Fatalf("autosave cleared dirty without saving")
	}
}

func TestAutosaveWritesDirtySession(t *testing.T) {
	fx := newFixture(t, session.Config{})

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	editHeadline(t, fx.session, "Autosaved draft")

	if err := fx.session.Autosave(context.Background()); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	if fx.session.Dirty() {
		t.Fatalf("session dirty after autosave")
	}
	stored, err := fx.projects.Get(context.Background(), fx.session.ProjectID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Snapshot.FindByID("headline").Text != "Autosaved draft" {
		t.Fatalf("autosave did not persist the edit")
	}
}

func TestFailedSaveKeepsDirty(t *testing.T) {
	// A project id with no backing row makes the write fail.
	fx := newFixture(t, session.Config{ProjectID: uuid.New()})
	editHeadline(t, fx.session, "Doomed edit")

	if err := fx.session.SetSeoSettings(seo.Settings{CanonicalURL: "https://x.example.com/"}); err != nil {
		t.Fatalf("set seo: %v", err)
	}

	if err := fx.session.SaveNow(context.Background()); !errors.Is(err, projects.ErrProjectNotFound) {
		t.Fatalf("save: got %v, want %v", err, projects.ErrProjectNotFound)
	}
	if !fx.session.Dirty() {
		t.Fatalf("failed save cleared the dirty flag")
	}
}

func TestSetBusinessInfoSubstitutesAndMarksDirty(t *testing.T) {
	fx := newFixture(t, session.Config{})

	err := fx.session.SetBusinessInfo(domain.BusinessInfo{Name: "Rosie's Bakery"})
	if err != nil {
		t.Fatalf("set business info: %v", err)
	}

	if !fx.session.Dirty() {
		t.Fatalf("business info change did not mark dirty")
	}
	snapshot, err := fx.session.Adapter().Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got := snapshot.FindByID("headline").Text; got != "Welcome to Rosie's Bakery" {
		t.Fatalf("headline = %q", got)
	}
	if fx.session.BusinessInfo().Name != "Rosie's Bakery" {
		t.Fatalf("business info not stored")
	}
}

func TestSetSeoSettingsValidates(t *testing.T) {
	fx := newFixture(t, session.Config{})

	err := fx.session.SetSeoSettings(seo.Settings{CanonicalURL: "/relative"})
	if !errors.Is(err, seo.ErrSettingsInvalid) {
		t.Fatalf("invalid settings: got %v", err)
	}
	if fx.session.Dirty() {
		t.Fatalf("rejected settings marked the session dirty")
	}

	if err := fx.session.SetSeoSettings(seo.Settings{Title: "Rosie's"}); err != nil {
		t.Fatalf("valid settings: %v", err)
	}
	if fx.session.SeoSettings().Title != "Rosie's" {
		t.Fatalf("settings not stored")
	}
}

func TestCanNavigateAway(t *testing.T) {
	confirmed := false
	fx := newFixture(t, session.Config{}, session.WithConfirmNavigation(func() bool { return confirmed }))

	if !fx.session.CanNavigateAway() {
		t.Fatalf("clean session blocked navigation")
	}

	editHeadline(t, fx.session, "Unsaved")
	if fx.session.CanNavigateAway() {
		t.Fatalf("dirty session navigated without confirmation")
	}

	confirmed = true
	if !fx.session.CanNavigateAway() {
		t.Fatalf("confirmation did not allow navigation")
	}
}

func TestCanNavigateAwayWithoutHookBlocksWhenDirty(t *testing.T) {
	fx := newFixture(t, session.Config{})
	editHeadline(t, fx.session, "Unsaved")

	if fx.session.CanNavigateAway() {
		t.Fatalf("dirty session with no hook navigated away")
	}
}

func TestResumeSessionSavesExistingProject(t *testing.T) {
	repo := projects.NewMemoryRepository()
	projectsSvc := projects.NewService(repo, projects.WithClock(func() time.Time { return testTime }))

	created, err := projectsSvc.Create(context.Background(), projects.CreateProjectInput{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
		Name:         "Existing",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sess, err := session.New(document.NewMemoryEngine(), projectsSvc, nil, session.Config{
		OwnerID:      "owner-1",
		TemplateSlug: "bakery-starter",
		ProjectID:    created.ID,
	}, session.WithClock(func() time.Time { return testTime }))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := sess.Adapter().Load(document.Source{Snapshot: &document.Snapshot{
		Version: document.SnapshotVersion,
		Root:    &document.Node{ID: "root", Tag: "div", Text: "resumed"},
	}}); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sess.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.ProjectID() != created.ID {
		t.Fatalf("resume save changed the project id")
	}
}

func TestAutosaverTick(t *testing.T) {
	fx := newFixture(t, session.Config{})
	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	editHeadline(t, fx.session, "Tick draft")

	saver := session.NewAutosaver(fx.session, session.WithInterval(time.Minute))
	saver.Tick(context.Background())

	if fx.session.Dirty() {
		t.Fatalf("tick did not autosave")
	}
}

func TestAutosaverRunStopsOnContextCancel(t *testing.T) {
	fx := newFixture(t, session.Config{})
	saver := session.NewAutosaver(fx.session, session.WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("autosaver did not stop on cancel")
	}
}

// blockingProjects parks the first Create call until released so a second
// save can be issued while the first is still in flight.
type blockingProjects struct {
	projects.Service
	entered chan struct{}
	release chan struct{}
	creates atomic.Int32
}

func (b *blockingProjects) Create(ctx context.Context, input projects.CreateProjectInput) (*projects.Project, error) {
	if b.creates.Add(1) == 1 {
		close(b.entered)
		<-b.release
	}
	return b.Service.Create(ctx, input)
}

func TestConcurrentSaveIsNoOp(t *testing.T) {
	repo := projects.NewMemoryRepository()
	svc := &blockingProjects{
		Service: projects.NewService(repo, projects.WithClock(func() time.Time { return testTime })),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	fx := newFixtureWithServices(t, session.Config{}, svc, repo)
	editHeadline(t, fx.session, "First draft")

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- fx.session.SaveNow(context.Background())
	}()
	<-svc.entered

	// The first save is mid-write; a second save collapses into it.
	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("overlapping save: %v", err)
	}
	if fx.session.ProjectID() != uuid.Nil {
		t.Fatalf("no-op save created a project")
	}
	if got := svc.creates.Load(); got != 1 {
		t.Fatalf("creates = %d, want 1", got)
	}

	close(svc.release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if fx.session.ProjectID() == uuid.Nil {
		t.Fatalf("released save did not adopt a project id")
	}
}

func TestSetNameMarksDirty(t *testing.T) {
	fx := newFixture(t, session.Config{Name: "Original"})

	fx.session.SetName("Original")
	if fx.session.Dirty() {
		t.Fatalf("unchanged name marked dirty")
	}

	fx.session.SetName("Renamed")
	if !fx.session.Dirty() {
		t.Fatalf("rename did not mark dirty")
	}

	if err := fx.session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, err := fx.projects.Get(context.Background(), fx.session.ProjectID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Name != "Renamed" {
		t.Fatalf("name = %q", stored.Name)
	}
}
