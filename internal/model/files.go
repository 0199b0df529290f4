package model

import "time"

type FileKind string

const (
	KindFile      FileKind = "file"
	KindDirectory FileKind = "directory"
)

type FileItem struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Type         FileKind  `json:"type"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"size_human,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	Extension    string    `json:"extension,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Editable     bool      `json:"editable,omitempty"`
	ItemCount    *int      `json:"item_count,omitempty"`
	Permissions  string    `json:"permissions"`
	ModifiedAt   time.Time `json:"modified_at"`
}

type DirectoryListing struct {
	CurrentPath string     `json:"current_path"`
	ParentPath  string     `json:"parent_path"`
	Items       []FileItem `json:"items"`
}

type ListQuery struct {
	Path  string
	Page  int
	Limit int
	Sort  string
	Order string
}

type UploadFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type UploadResult struct {
	Uploaded []FileItem      `json:"uploaded"`
	Failed   []UploadFailure `json:"failed"`
}

// TextFile is a file opened in the editor.
type TextFile struct {
	Path       string    `json:"path"`
	Content    string    `json:"content"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}
