package model

// CitationMap holds the stable per-answer citation indices.
// Indices are 1-based and assigned in first-seen chunk order; all chunks
// from the same source file share one index within an answer.
type CitationMap struct {
	Files   map[string]int `json:"files_to_citation_indices"`
	Sources map[int]string `json:"citation_index_to_source"`
}

// NewCitationMap returns an empty citation map
func NewCitationMap() CitationMap {
	return CitationMap{
		Files:   map[string]int{},
		Sources: map[int]string{},
	}
}

// Index returns the citation index for a source file and whether it is mapped
func (m CitationMap) Index(sourceFile string) (int, bool) {
	idx, ok := m.Files[sourceFile]
	return idx, ok
}

// Len returns the number of distinct cited source files
func (m CitationMap) Len() int {
	return len(m.Sources)
}
