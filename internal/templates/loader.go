package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/identity"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrSeedUnsupported = errors.New("templates: unsupported seed format")
	ErrSeedSlugInvalid = errors.New("templates: seed slug is invalid")
	ErrSeedNotFound    = errors.New("templates: seed not found")
)

// Seed is a starting-point template a new project is cloned from. The
// snapshot is the canonical document form regardless of which on-disk format
// the seed was authored in.
type Seed struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Snapshot    *document.Snapshot
	SeoDefaults seo.Settings
}

// Clone deep-copies the seed so every new project edits its own document.
func (s *Seed) Clone() *Seed {
	if s == nil {
		return nil
	}
	return &Seed{
		ID:          s.ID,
		Slug:        s.Slug,
		Name:        s.Name,
		Snapshot:    s.Snapshot.Clone(),
		SeoDefaults: s.SeoDefaults.Clone(),
	}
}

// jsonSeed is the authoring format for snapshot seeds.
type jsonSeed struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Seo      seo.Settings    `json:"seo"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// markdownMeta is the frontmatter block on .md seeds.
type markdownMeta struct {
	Name string       `yaml:"name"`
	Slug string       `yaml:"slug"`
	Seo  seo.Settings `yaml:"seo"`
}

// LoaderOption configures a loader.
type LoaderOption func(*Loader)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader reads seed templates from a filesystem. Three authoring formats are
// supported: .json document snapshots, .html legacy markup that gets imported
// and sanitized, and .md files with frontmatter metadata and a markdown body.
type Loader struct {
	fs       fs.FS
	markdown goldmark.Markdown
	logger   interfaces.Logger
}

// NewLoader constructs a loader over the given filesystem.
func NewLoader(filesystem fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:       filesystem,
		markdown: goldmark.New(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile parses a single seed file. The template slug defaults to the file
// name when the seed carries none of its own.
func (l *Loader) LoadFile(ctx context.Context, filePath string) (*Seed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", filePath, err)
	}

	switch strings.ToLower(path.Ext(filePath)) {
	case ".json":
		return l.loadJSON(filePath, data)
	case ".html":
		return l.loadHTML(filePath, data)
	case ".md":
		return l.loadMarkdown(filePath, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrSeedUnsupported, filePath)
	}
}

// LoadDirectory discovers every seed under dir, sorted by slug so catalog
// listings are stable.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Seed, error) {
	var seeds []*Seed

	err := fs.WalkDir(l.fs, dir, func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(filePath)) {
		case ".json", ".html", ".md":
		default:
			return nil
		}
		seed, err := l.LoadFile(ctx, filePath)
		if err != nil {
			return err
		}
		seeds = append(seeds, seed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(seeds, func(i, j int) bool {
		return seeds[i].Slug < seeds[j].Slug
	})
	return seeds, nil
}

func (l *Loader) loadJSON(filePath string, data []byte) (*Seed, error) {
	var raw jsonSeed
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", filePath, err)
	}

	seedSlug, err := l.resolveSlug(raw.Slug, filePath)
	if err != nil {
		return nil, err
	}

	snapshot, err := document.Decode(raw.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", filePath, err)
	}

	return l.finish(seedSlug, raw.Name, snapshot, raw.Seo), nil
}

func (l *Loader) loadHTML(filePath string, data []byte) (*Seed, error) {
	seedSlug, err := l.resolveSlug("", filePath)
	if err != nil {
		return nil, err
	}

	snapshot, err := document.ImportHTML(seedSlug, string(data))
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", filePath, err)
	}

	return l.finish(seedSlug, "", snapshot, seo.Settings{}), nil
}

func (l *Loader) loadMarkdown(filePath string, data []byte) (*Seed, error) {
	var meta markdownMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", filePath, err)
	}

	seedSlug, err := l.resolveSlug(meta.Slug, filePath)
	if err != nil {
		return nil, err
	}

	var rendered bytes.Buffer
	if err := l.markdown.Convert(body, &rendered); err != nil {
		return nil, fmt.Errorf("templates: render %s: %w", filePath, err)
	}

	snapshot, err := document.ImportHTML(seedSlug, rendered.String())
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", filePath, err)
	}

	return l.finish(seedSlug, meta.Name, snapshot, meta.Seo), nil
}

func (l *Loader) finish(seedSlug, name string, snapshot *document.Snapshot, seoDefaults seo.Settings) *Seed {
	if strings.TrimSpace(name) == "" {
		name = titleFromSlug(seedSlug)
	}
	seed := &Seed{
		ID:          identity.TemplateUUID(seedSlug),
		Slug:        seedSlug,
		Name:        name,
		Snapshot:    snapshot,
		SeoDefaults: seoDefaults,
	}
	l.logger.Debug("seed loaded", "slug", seed.Slug, "template_id", seed.ID.String())
	return seed
}

// resolveSlug prefers the slug the seed declares, falling back to the file
// name. Either way the result must normalize cleanly.
func (l *Loader) resolveSlug(declared, filePath string) (string, error) {
	candidate := strings.TrimSpace(declared)
	if candidate == "" {
		base := path.Base(filePath)
		candidate = strings.TrimSuffix(base, path.Ext(base))
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrSeedSlugInvalid, candidate)
	}
	return normalized, nil
}

func titleFromSlug(seedSlug string) string {
	words := strings.Split(seedSlug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
