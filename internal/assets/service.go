package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-sitebuilder/internal/identity"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrOwnerRequired   = errors.New("assets: owner id is required")
	ErrNameRequired    = errors.New("assets: file name is required")
	ErrContentRequired = errors.New("assets: file content is required")
	ErrFileTooLarge    = errors.New("assets: file exceeds the size policy")
	ErrTypeNotAllowed  = errors.New("assets: file type is not allowed")
)

// Policy constrains uploads. It arrives from configuration; zero values
// disable the corresponding check.
type Policy struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

func (p Policy) allows(mimeType string) bool {
	if len(p.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), mimeType) {
			return true
		}
		if strings.HasSuffix(allowed, "/*") &&
			strings.HasPrefix(mimeType, strings.TrimSuffix(allowed, "*")) {
			return true
		}
	}
	return false
}

// Service manages uploads scoped by owner and project.
type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Asset, error)
	UploadBatch(ctx context.Context, reqs []UploadRequest) []BatchResult
	ListForProject(ctx context.Context, ownerID, projectID string) ([]*Asset, error)
	Claim(ctx context.Context, ownerID, projectID string) (int, error)
}

// UploadRequest carries one file into storage.
type UploadRequest struct {
	OwnerID   string
	ProjectID string
	Name      string
	MimeType  string
	Content   io.Reader
	Size      int64
}

// BatchResult reports one file's outcome. A failed sibling never rolls back a
// committed upload; callers treat each entry independently.
type BatchResult struct {
	Name  string
	Asset *Asset
	Err   error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithPolicy installs the upload size/type policy.
func WithPolicy(policy Policy) ServiceOption {
	return func(s *service) {
		s.policy = policy
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo    Repository
	store   interfaces.ObjectStorage
	policy  Policy
	now     func() time.Time
	logger  interfaces.Logger
	baseDir string
}

// NewService constructs the asset service over a repository and blob storage.
func NewService(repo Repository, store interfaces.ObjectStorage, opts ...ServiceOption) Service {
	s := &service{
		repo:    repo,
		store:   store,
		now:     time.Now,
		logger:  logging.NoOp(),
		baseDir: "assets",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates the file against the policy, writes it to storage under
// the owner+project scope, and registers the record. Uploads are
// content-addressed by scope, not globally deduplicated: the same file in two
// projects yields two assets.
func (s *service) Upload(ctx context.Context, req UploadRequest) (*Asset, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	name := sanitizeName(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Content == nil {
		return nil, ErrContentRequired
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		projectID = ProjectUnsaved
	}
	if s.policy.MaxSizeBytes > 0 && req.Size > s.policy.MaxSizeBytes {
		return nil, ErrFileTooLarge
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if !s.policy.allows(mimeType) {
		return nil, ErrTypeNotAllowed
	}

	key := path.Join(s.baseDir, ownerID, projectID, name)
	stored, err := s.store.Put(ctx, interfaces.PutObjectRequest{
		Key:         key,
		Content:     req.Content,
		Size:        req.Size,
		ContentType: mimeType,
		Metadata: map[string]string{
			"owner_id":   ownerID,
			"project_id": projectID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("assets: store %q: %w", name, err)
	}

	record := &Asset{
		ID:        identity.AssetUUID(ownerID, projectID, key),
		OwnerID:   ownerID,
		ProjectID: projectID,
		URL:       stored.URL,
		Name:      name,
		MimeType:  mimeType,
		Size:      stored.Size,
		CreatedAt: s.now(),
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("assets: register %q: %w", name, err)
	}
	s.logger.Debug("assets.upload", "name", name, "project_id", projectID, "size", stored.Size)
	return created, nil
}

// UploadBatch uploads each file independently. Earlier successes stay
// committed when a later file fails; there is no all-or-nothing rollback.
func (s *service) UploadBatch(ctx context.Context, reqs []UploadRequest) []BatchResult {
	results := make([]BatchResult, 0, len(reqs))
	for _, req := range reqs {
		asset, err := s.Upload(ctx, req)
		results = append(results, BatchResult{Name: req.Name, Asset: asset, Err: err})
		if err != nil {
			s.logger.Warn("assets.upload_batch.item_failed", "name", req.Name, "error", err)
		}
	}
	return results
}

// ListForProject returns the assets registered in the owner+project scope.
func (s *service) ListForProject(ctx context.Context, ownerID, projectID string) ([]*Asset, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(projectID) == "" {
		projectID = ProjectUnsaved
	}
	return s.repo.ListForProject(ctx, ownerID, projectID)
}

// Claim re-homes the owner's unsaved-scoped assets onto a freshly created
// project. Uploads made before the first save land in the unsaved scope; the
// first save calls this so the records follow the project.
func (s *service) Claim(ctx context.Context, ownerID, projectID string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)
	projectID = strings.TrimSpace(projectID)
	if ownerID == "" {
		return 0, ErrOwnerRequired
	}
	if projectID == "" || projectID == ProjectUnsaved {
		return 0, errors.New("assets: claim requires a saved project id")
	}

	pending, err := s.repo.ListForProject(ctx, ownerID, ProjectUnsaved)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for _, asset := range pending {
		asset.ProjectID = projectID
		if _, err := s.repo.Update(ctx, asset); err != nil {
			return claimed, fmt.Errorf("assets: claim %q: %w", asset.Name, err)
		}
		claimed++
	}
	return claimed, nil
}

// sanitizeName keeps uploads path-safe inside the storage scope.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "-")
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		}
	}
	cleaned := strings.Trim(sb.String(), "-.")
	if cleaned == "" || cleaned == "." {
		return ""
	}
	return cleaned
}
