package dto

// AskRequest is the question payload for the grounded Q&A endpoint.
type AskRequest struct {
	Question   string `json:"question" validate:"required,min=3"`
	SourcePath string `json:"source_path,omitempty"`
	PageType   string `json:"page_type,omitempty"`
	TopK       int    `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
}

type CitationDTO struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Locator string `json:"locator"`
	Excerpt string `json:"excerpt"`
}

type AskResponse struct {
	Answer    string        `json:"answer"`
	Citations []CitationDTO `json:"citations"`
	Grounded  bool          `json:"grounded"`
}

type SearchResultDTO struct {
	ChunkId    string  `json:"chunk_id"`
	SourcePath string  `json:"source_path"`
	Title      string  `json:"title"`
	Heading    string  `json:"heading"`
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []*SearchResultDTO `json:"results"`
}
