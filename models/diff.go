package models

// DiffEntry is a chunk excerpt that has no sufficiently similar counterpart
// in the other collection.
type DiffEntry struct {
	Page       int     `json:"page"`
	Excerpt    string  `json:"excerpt"`
	Similarity float64 `json:"similarity"`
}

// DiffResult is the semantic comparison of two isolated collections.
type DiffResult struct {
	SourceA     string      `json:"source_a"`
	SourceB     string      `json:"source_b"`
	AddedInB    []DiffEntry `json:"added_in_b"`
	RemovedInB  []DiffEntry `json:"removed_in_b"`
	CommonCount int         `json:"common_count"`
	Summary     string      `json:"summary"`
}
