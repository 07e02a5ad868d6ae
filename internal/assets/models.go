package assets

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectUnsaved is the sentinel project scope for uploads made before the
// project's first save. Claim re-homes these once a project id exists.
const ProjectUnsaved = "unsaved"

// Asset records a user upload kept in durable storage. Assets are referenced
// by URL from document nodes and are never deleted automatically when removed
// from the document; orphan cleanup is a separate concern.
type Asset struct {
	bun.BaseModel `bun:"table:assets,alias:a"`

	ID        uuid.UUID `bun:",pk,type:uuid"             json:"id"`
	OwnerID   string    `bun:"owner_id,notnull"          json:"owner_id"`
	ProjectID string    `bun:"project_id,notnull"        json:"project_id"`
	URL       string    `bun:"url,notnull"               json:"url"`
	Name      string    `bun:"display_name,notnull"      json:"name"`
	MimeType  string    `bun:"mime_type"                 json:"mime_type,omitempty"`
	Size      int64     `bun:"size_bytes"                json:"size,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
