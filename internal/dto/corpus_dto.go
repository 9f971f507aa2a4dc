package dto

// ReindexRequest asks for a corpus rebuild. An empty Path means the whole
// docs directory; a relative path limits the run to one document.
type ReindexRequest struct {
	Path string `json:"path,omitempty"`
}

// PublishReindexMessage is the payload carried on the reindex topic.
type PublishReindexMessage struct {
	Path string `json:"path"`
}

type IngestErrorDTO struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IngestSummary reports one ingestion run.
type IngestSummary struct {
	DocsScanned   int              `json:"docs_scanned"`
	DocsIndexed   int              `json:"docs_indexed"`
	DocsFailed    int              `json:"docs_failed"`
	ChunksWritten int              `json:"chunks_written"`
	Errors        []IngestErrorDTO `json:"errors,omitempty"`
}

type CorpusStatsResponse struct {
	TotalChunks    int64 `json:"total_chunks"`
	EmbeddedChunks int64 `json:"embedded_chunks"`
}

// ChunkDTO summarizes one indexed chunk without its content or vector.
type ChunkDTO struct {
	Id         string `json:"id"`
	ChunkIndex int    `json:"chunk_index"`
	Heading    string `json:"heading"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	CharCount  int    `json:"char_count"`
	WordCount  int    `json:"word_count"`
	Embedded   bool   `json:"embedded"`
}

// DocumentChunksResponse lists the indexed chunks of one document.
type DocumentChunksResponse struct {
	SourcePath string      `json:"source_path"`
	Chunks     []*ChunkDTO `json:"chunks"`
}
