package domain

// PaperStats accumulates reading activity for a paper. Seeded on import.
type PaperStats struct {
	PaperID        string `json:"paperId"`
	TotalReadTime  int64  `json:"totalReadTime"`
	LastOpenedPage *int64 `json:"lastOpenedPage"`
}

// NoteStats accumulates review activity for a note. Seeded on create.
type NoteStats struct {
	NoteID         string  `json:"noteId"`
	ReviewCount    int64   `json:"reviewCount"`
	LastReviewedAt *string `json:"lastReviewedAt"`
}

// ReviewSummary aggregates review activity across the whole database,
// backing the review dashboard.
type ReviewSummary struct {
	PaperCount    int64 `json:"paperCount"`
	NoteCount     int64 `json:"noteCount"`
	ReviewedNotes int64 `json:"reviewedNotes"`
	TotalReviews  int64 `json:"totalReviews"`
}
