package domain

// DefaultWorkspaceID is the reserved workspace that always exists and
// cannot be deleted.
const DefaultWorkspaceID = "default_workspace"

// Workspace is a named collection isolating papers and notes.
// ID is a slug, globally unique, immutable after creation.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
