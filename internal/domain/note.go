package domain

// Note is a user annotation anchored to a page/coordinate within a paper.
type Note struct {
	ID        string  `json:"id"`
	PaperID   string  `json:"paperId"`
	Page      int     `json:"page"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Content   string  `json:"content"`
	Color     *string `json:"color"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// NewNote carries the fields for note creation.
type NewNote struct {
	PaperID string  `json:"paperId"`
	Page    int     `json:"page"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content"`
	Color   *string `json:"color"`
}

// UpdateNote is a patch with presence flags: nil pointers mean "leave the
// field alone", non-nil pointers are applied. Only Content and Color are
// patchable; anchoring fields are immutable after creation.
type UpdateNote struct {
	ID      string  `json:"id"`
	Content *string `json:"content"`
	Color   *string `json:"color"`
}
