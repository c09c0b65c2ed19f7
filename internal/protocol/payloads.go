package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/weddingportal/internal/common"
)

// HeartCount is the heart_update payload.
type HeartCount struct {
	Count int64 `json:"count"`
}

// NameRef carries a guest name (send_rsvp, block_user).
type NameRef struct {
	Name string `json:"name"`
}

// Announcement is the server's announcement payload. A null message clears it.
type Announcement struct {
	Message *string `json:"message"`
}

// Typing is relayed between clients untouched by the store.
type Typing struct {
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

// LocationUpdate is one position report. Inbound reports may omit the sender,
// in which case the server uses the name the connection joined with. Location
// arrays sent by older servers use either name or sender.
type LocationUpdate struct {
	Name      string  `json:"name,omitempty"`
	Sender    string  `json:"sender,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

// Who returns the reporting user's name, if any.
func (l LocationUpdate) Who() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Sender
}

// DecodeAnnouncementText accepts either a bare JSON string or {"message": s}.
// The second result is false when the announcement is explicitly cleared.
func DecodeAnnouncementText(raw json.RawMessage) (string, bool, error) {
	inner := Unwrap(raw)

	var text string
	if err := json.Unmarshal(inner, &text); err == nil {
		return text, true, nil
	}

	var a Announcement
	if err := json.Unmarshal(inner, &a); err != nil {
		return "", false, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
	if a.Message == nil {
		return "", false, nil
	}
	return *a.Message, true, nil
}
