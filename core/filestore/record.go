package filestore

// FileRecord is one catalog row. Records are immutable once written; a
// "canonical" record (ID == ContentID) owns the stored blob, while a dedup
// record borrows the canonical record's content.
type FileRecord struct {
	ID          int64
	ContentID   int64
	Name        string
	ContentType string
	ContentHash string
	Bucket      string
	Spoiler     bool
	Width       *int
	Height      *int
}

// Canonical reports whether this record owns its blob.
func (r *FileRecord) Canonical() bool {
	return r.ID == r.ContentID
}

// Metadata derives the client-facing metadata union from the stored content
// type and dimensions.
func (r *FileRecord) Metadata() FileMetadata {
	return metadataFor(r.ContentType, r.Width, r.Height)
}

// Data projects the record into its client-facing shape. Content hash and
// ContentID stay internal.
func (r *FileRecord) Data() FileData {
	return FileData{
		ID:       r.ID,
		Name:     r.Name,
		Bucket:   r.Bucket,
		Spoiler:  r.Spoiler,
		Metadata: r.Metadata(),
	}
}

// FileData is what clients see for an uploaded file.
type FileData struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Bucket   string       `json:"bucket"`
	Spoiler  bool         `json:"spoiler,omitempty"`
	Metadata FileMetadata `json:"metadata"`
}
