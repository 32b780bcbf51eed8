package models

import "time"

// PDFDocument is the Firestore record of one uploaded PDF.
// Pages holds every page parsed so far, in the order they were parsed.
type PDFDocument struct {
	ID          string        `firestore:"-" json:"pdf_id"`
	FileName    string        `firestore:"fileName" json:"fileName"`
	PDFURL      string        `firestore:"pdfUrl" json:"pdfUrl"`
	PageCount   int           `firestore:"pageCount,omitempty" json:"pageCount,omitempty"`
	Pages       []ParsedPage  `firestore:"pages" json:"pages"`
	// ChatHistory is reserved for the doubt chat. It is stored empty at
	// registration and nothing else reads or writes it.
	ChatHistory []ChatMessage `firestore:"chatHistory" json:"chatHistory"`
	CreatedAt   time.Time     `firestore:"createdAt,omitempty" json:"createdAt"`
}

// ParsedPage is one extracted page together with its generated explanation.
type ParsedPage struct {
	PageNumber  int    `firestore:"pageNumber" json:"pageNumber"`
	Text        string `firestore:"text" json:"text"`
	Explanation string `firestore:"explanation" json:"explanation"`
}

// ChatMessage mirrors the Gemini content shape the chat history is stored in.
type ChatMessage struct {
	Role  string     `firestore:"role" json:"role"`
	Parts []ChatPart `firestore:"parts" json:"parts"`
}

type ChatPart struct {
	Text string `firestore:"text" json:"text"`
}

// Page returns the stored page with the given number, if any.
func (d *PDFDocument) Page(pageNumber int) (ParsedPage, bool) {
	for _, p := range d.Pages {
		if p.PageNumber == pageNumber {
			return p, true
		}
	}
	return ParsedPage{}, false
}
