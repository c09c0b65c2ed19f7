package models

// MessageType distinguishes plain chat text from sticker messages.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessageSticker MessageType = "sticker"
)

// ChatMessage is one entry of the shared chat.
type ChatMessage struct {
	// ID is generated by the sending client (unix millis + random suffix).
	ID string `json:"id"`

	SenderName string `json:"senderName"`
	IsCouple   bool   `json:"isCouple"`

	// Content holds the text, or the sticker key for sticker messages.
	Content string      `json:"content"`
	Type    MessageType `json:"type"`

	// Timestamp is a display string, not a sortable time.
	Timestamp string `json:"timestamp"`
}

// Lantern is a released sky lantern. Depth, XValues, Speed and Delay are
// presentation parameters chosen by the sender and carried verbatim.
type Lantern struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Color     string    `json:"color"`
	Depth     float64   `json:"depth"`
	XValues   []float64 `json:"xValues"`
	Speed     float64   `json:"speed"`
	Delay     float64   `json:"delay"`
	Timestamp int64     `json:"timestamp"`
}
