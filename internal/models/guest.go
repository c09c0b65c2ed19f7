package models

type Role string

const (
	RoleGuest  Role = "guest"
	RoleCouple Role = "couple"
	RoleAdmin  Role = "admin"
)

// GuestEntry is a presence record keyed by Name. RSVP is nil until the guest
// answers.
type GuestEntry struct {
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
	RSVP     *bool  `json:"rsvp,omitempty"`
}

// LocationPoint is the last reported position of one sender.
type LocationPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}
