package event

type Type string

const (
	TypeSessionRestored    Type = "session.restored"
	TypeSessionLoggedIn    Type = "session.logged_in"
	TypeSessionLoggedOut   Type = "session.logged_out"
	TypeSessionLoginFailed Type = "session.login_failed"
	TypeSessionLoading     Type = "session.loading"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username,omitempty"` // Who the session belongs to
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
