package dto

type UploadResponse struct {
	Message   string `json:"message"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	Timestamp string `json:"timestamp"`
}

type SearchResult struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Distance float64                `json:"distance"`
}

type SearchResponse struct {
	Query     string         `json:"query"`
	Results   []SearchResult `json:"results"`
	Count     int            `json:"count"`
	Timestamp string         `json:"timestamp"`
}

type DocumentDetail struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Chunks       int    `json:"chunks"`
	Size         int64  `json:"size"`
	UploadTime   string `json:"uploadTime"`
}

type ListDocumentsResponse struct {
	TotalDocuments  int              `json:"totalDocuments"`
	TotalChunks     int64            `json:"totalChunks"`
	Documents       []string         `json:"documents"`
	DocumentDetails []DocumentDetail `json:"documentDetails"`
}

type CSVAnalysisResponse struct {
	FileName      string `json:"fileName"`
	TotalChunks   int    `json:"totalChunks"`
	HasStatistics bool   `json:"hasStatistics"`
	Preview       string `json:"preview"`
}

type CSVQueryRequest struct {
	Question string `json:"question" validate:"required"`
	FileName string `json:"fileName,omitempty"`
}

type CSVQueryResponse struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	CSVSources []string `json:"csvSources"`
	Type       string   `json:"type"`
	Timestamp  string   `json:"timestamp"`
}

type ResetCollectionResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PublishDocumentIngestedMessage is the watermill payload emitted after an
// upload is fully chunked and embedded.
type PublishDocumentIngestedMessage struct {
	Collection       string `json:"collection"`
	Source           string `json:"source"`
	OriginalFilename string `json:"original_filename"`
	Chunks           int    `json:"chunks"`
}
