package models

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem is a gallery entry. URL is either a data URI or a remote URL.
// Items are never patched by id on the wire: caption edits and deletions
// resend the whole gallery.
type MediaItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Type      MediaType `json:"type"`
	Caption   string    `json:"caption,omitempty"`
	Timestamp int64     `json:"timestamp"`
	Sender    string    `json:"sender"`
}
