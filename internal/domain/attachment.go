package domain

import "time"

// Attachment references a file already uploaded to external storage.
// The service records the reference only; it never performs the upload.
type Attachment struct {
	ID         string
	TicketID   string
	Filename   string
	URL        string
	SizeBytes  int64
	MimeType   string
	UploadedAt time.Time
}
