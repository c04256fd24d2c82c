package domain

// NoteRefType is the reference kind for note entries in the search index.
const NoteRefType = "note"

// SearchHit is one ranked match from the search index. Score is the bm25
// rank folded into [0,1], higher is better.
type SearchHit struct {
	RefType string  `json:"refType"`
	RefID   string  `json:"refId"`
	Snippet *string `json:"snippet"`
	Score   float64 `json:"score"`
}
