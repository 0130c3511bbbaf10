package models

import "time"

// UploadedFile records the metadata of a file stored in the upload directory.
// The ID is the generated on-disk filename, which is also used in download URLs.
type UploadedFile struct {
	ID           string `gorm:"primaryKey;size:64"`
	OriginalName string `gorm:"size:255"`
	MimeType     string `gorm:"size:100"`
	Size         int64
	// UploadedBy is the ID of the user who uploaded the file.
	UploadedBy uint64
	CreatedAt  time.Time
}
