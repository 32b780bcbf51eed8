package models

// These structs define the request and response payloads of the page
// services. The CLI prints responses as JSON.

const (
	StatusAlreadyParsed = "already_parsed"
	StatusNewlyParsed   = "newly_parsed"
)

// RegisterDocumentRequest records a PDF that already lives in the object store.
type RegisterDocumentRequest struct {
	FileName string `json:"fileName"`
	PDFURL   string `json:"pdfUrl"`
}

type RegisterDocumentResponse struct {
	PDFID string `json:"pdf_id"`
}

// ParsePageRequest is the input of the page parser.
type ParsePageRequest struct {
	PDFID      string `json:"pdf_id"`
	PageNumber int    `json:"page_no"`
	Language   string `json:"language"`
}

// ParsePageResponse is the output of the page parser.
type ParsePageResponse struct {
	Status      string `json:"status"`
	PageNumber  int    `json:"pageNumber"`
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

// DocumentInfoResponse summarises a stored PDF.
type DocumentInfoResponse struct {
	PDFID       string `json:"pdf_id"`
	FileName    string `json:"fileName"`
	TotalPages  int    `json:"totalPages"`
	ParsedPages int    `json:"parsedPages"`
	PDFURL      string `json:"pdfUrl"`
}

type PageImageRequest struct {
	PDFID      string `json:"pdf_id"`
	PageNumber int    `json:"page_no"`
}

// PageImageResponse carries the rendered page as a data URL.
type PageImageResponse struct {
	Image string `json:"image"`
}
