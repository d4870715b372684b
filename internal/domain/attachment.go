package domain

import "time"

// AttachmentReference stores metadata for a blob held in external object
// storage. Only the storage key travels through this service; binary transfer
// is the blob store's concern.
type AttachmentReference struct {
	ID         int64
	TicketID   int64
	UploaderID int64
	StorageKey string
	FileName   string
	Notes      string
	CreatedAt  time.Time
}
