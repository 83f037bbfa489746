package domain

// GroupMessage is an inbound group-chat message, already reduced to the
// fields the command layer needs.
type GroupMessage struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Nickname string `json:"nickname"`
}

// SenderName returns the sender's display name, falling back to a
// user-id-derived placeholder when the platform supplied none.
func (m *GroupMessage) SenderName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return "用户" + m.UserID
}
