package domain

// Paper is a deduplicated reference to an imported source document.
// Path tracks the most recently observed filesystem location;
// LastSeenPath mirrors it for audit purposes.
type Paper struct {
	ID           string  `json:"id"`
	WorkspaceID  string  `json:"workspaceId"`
	Title        string  `json:"title"`
	DOI          *string `json:"doi"`
	Path         string  `json:"path"`
	LastSeenPath *string `json:"lastSeenPath"`
	FileHash     string  `json:"fileHash"`
	Filesize     *int64  `json:"filesize"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// PaperImportRequest asks the repository to import a batch of files into
// a workspace. All paths are imported in a single transaction.
type PaperImportRequest struct {
	Paths       []string `json:"paths"`
	WorkspaceID string   `json:"workspaceId"`
}
