package assets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestService(opts ...ServiceOption) (Service, *MemoryRepository, *MemoryStorage) {
	repo := NewMemoryRepository()
	store := NewMemoryStorage("https://cdn.example.com")
	base := []ServiceOption{
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }),
	}
	svc := NewService(repo, store, append(base, opts...)...)
	return svc, repo, store
}

func uploadReq(name string) UploadRequest {
	return UploadRequest{
		OwnerID:  "owner-1",
		Name:     name,
		MimeType: "image/png",
		Content:  strings.NewReader("png-bytes"),
		Size:     9,
	}
}

func TestUploadStoresAndRegisters(t *testing.T) {
	svc, _, store := newTestService()

	asset, err := svc.Upload(context.Background(), uploadReq("logo.png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if asset.ProjectID != ProjectUnsaved {
		t.Fatalf("project scope = %q, want %q", asset.ProjectID, ProjectUnsaved)
	}
	if asset.URL != "https://cdn.example.com/assets/owner-1/unsaved/logo.png" {
		t.Fatalf("url = %q", asset.URL)
	}
	if asset.Size != int64(len("png-bytes")) {
		t.Fatalf("size = %d", asset.Size)
	}

	content, ok := store.Read("assets/owner-1/unsaved/logo.png")
	if !ok {
		t.Fatalf("blob not written")
	}
	if string(content) != "png-bytes" {
		t.Fatalf("blob content = %q", content)
	}
}

func TestUploadIsDeterministicPerScope(t *testing.T) {
	svc, _, _ := newTestService()

	first, err := svc.Upload(context.Background(), uploadReq("logo.png"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := svc.Upload(context.Background(), uploadReq("logo.png"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	// Same owner, scope, and name address the same record.
	if first.ID != second.ID {
		t.Fatalf("re-upload minted a new id: %s vs %s", first.ID, second.ID)
	}
}

func TestUploadValidation(t *testing.T) {
	svc, _, _ := newTestService(WithPolicy(Policy{
		MaxSizeBytes: 16,
		AllowedTypes: []string{"image/*"},
	}))

	cases := map[string]struct {
		mutate func(*UploadRequest)
		want   error
	}{
		"missing owner":   {func(r *UploadRequest) { r.OwnerID = " " }, ErrOwnerRequired},
		"missing name":    {func(r *UploadRequest) { r.Name = "../.." }, ErrNameRequired},
		"missing content": {func(r *UploadRequest) { r.Content = nil }, ErrContentRequired},
		"oversized file":  {func(r *UploadRequest) { r.Size = 17 }, ErrFileTooLarge},
		"disallowed type": {func(r *UploadRequest) { r.MimeType = "application/pdf" }, ErrTypeNotAllowed},
	}

	for name, tc := range cases {
		req := uploadReq("logo.png")
		tc.mutate(&req)
		if _, err := svc.Upload(context.Background(), req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", name, err, tc.want)
		}
	}
}

func TestUploadAllowsWildcardTypes(t *testing.T) {
	svc, _, _ := newTestService(WithPolicy(Policy{AllowedTypes: []string{"image/*"}}))

	if _, err := svc.Upload(context.Background(), uploadReq("logo.png")); err != nil {
		t.Fatalf("image upload: %v", err)
	}

	req := uploadReq("doc.pdf")
	req.MimeType = "application/pdf"
	if _, err := svc.Upload(context.Background(), req); !errors.Is(err, ErrTypeNotAllowed) {
		t.Fatalf("pdf upload: got %v, want %v", err, ErrTypeNotAllowed)
	}
}

func TestUploadSanitizesNames(t *testing.T) {
	svc, _, _ := newTestService()

	req := uploadReq("../secret/My Logo (final).png")
	asset, err := svc.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.Name != "My-Logo-final.png" {
		t.Fatalf("name = %q", asset.Name)
	}
	if strings.Contains(asset.URL, "..") {
		t.Fatalf("url escapes the scope: %q", asset.URL)
	}
}

func TestUploadBatchKeepsEarlierSuccesses(t *testing.T) {
	svc, repo, _ := newTestService(WithPolicy(Policy{MaxSizeBytes: 16}))

	bad := uploadReq("huge.png")
	bad.Size = 1024

	results := svc.UploadBatch(context.Background(), []UploadRequest{
		uploadReq("one.png"),
		bad,
		uploadReq("two.png"),
	})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("valid files failed: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, ErrFileTooLarge) {
		t.Fatalf("oversized file: got %v, want %v", results[1].Err, ErrFileTooLarge)
	}

	stored, err := repo.ListForProject(context.Background(), "owner-1", ProjectUnsaved)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("registered %d assets, want 2", len(stored))
	}
}

func TestListForProjectScopesByOwner(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Upload(context.Background(), uploadReq("mine.png")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	other := uploadReq("theirs.png")
	other.OwnerID = "owner-2"
	if _, err := svc.Upload(context.Background(), other); err != nil {
		t.Fatalf("upload: %v", err)
	}

	mine, err := svc.ListForProject(context.Background(), "owner-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "mine.png" {
		t.Fatalf("list = %+v", mine)
	}
}

func TestClaimRehomesUnsavedAssets(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, name := range []string{"one.png", "two.png"} {
		if _, err := svc.Upload(context.Background(), uploadReq(name)); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
	}
	saved := uploadReq("kept.png")
	saved.ProjectID = "project-9"
	if _, err := svc.Upload(context.Background(), saved); err != nil {
		t.Fatalf("upload kept: %v", err)
	}

	claimed, err := svc.Claim(context.Background(), "owner-1", "project-1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed != 2 {
		t.Fatalf("claimed = %d, want 2", claimed)
	}

	pending, err := repo.ListForProject(context.Background(), "owner-1", ProjectUnsaved)
	if err != nil {
		t.Fatalf("list unsaved: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("unsaved scope still has %d assets", len(pending))
	}
	homed, err := repo.ListForProject(context.Background(), "owner-1", "project-1")
	if err != nil {
		t.Fatalf("list project: %v", err)
	}
	if len(homed) != 2 {
		t.Fatalf("project scope has %d assets, want 2", len(homed))
	}
	untouched, err := repo.ListForProject(context.Background(), "owner-1", "project-9")
	if err != nil {
		t.Fatalf("list other project: %v", err)
	}
	if len(untouched) != 1 {
		t.Fatalf("other project scope changed: %d assets", len(untouched))
	}
}

func TestClaimRequiresSavedProject(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Claim(context.Background(), "owner-1", ProjectUnsaved); err == nil {
		t.Fatalf("claim into the unsaved scope succeeded")
	}
	if _, err := svc.Claim(context.Background(), "", "project-1"); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("claim without owner: got %v, want %v", err, ErrOwnerRequired)
	}
}
