package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// TemplateUUID identifies a seed template by its origin slug.
func TemplateUUID(slug string) uuid.UUID {
	return UUID("go-sitebuilder:template:" + strings.ToLower(strings.TrimSpace(slug)))
}

// AssetUUID identifies an uploaded asset by its owner, project, and storage key.
// Re-uploading the same file into the same scope resolves to the same record.
func AssetUUID(ownerID, projectID, key string) uuid.UUID {
	return UUID("go-sitebuilder:asset:" + ownerID + ":" + projectID + ":" + strings.TrimSpace(key))
}

// NodeUUID identifies a document node seeded from a template, keyed by the
// template and the node's position path. Generation stays deterministic
// because these never depend on wall-clock or randomness.
func NodeUUID(templateSlug, path string) uuid.UUID {
	return UUID("go-sitebuilder:node:" + strings.ToLower(strings.TrimSpace(templateSlug)) + ":" + path)
}
