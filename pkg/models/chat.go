package models

// Chat is the persisted metadata for a conversation thread. The message
// sequence itself is owned by the registry; the store keeps a mirror under
// per-message keys.
type Chat struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IsGroup bool   `json:"is_group,omitempty"`
	// Members is populated only for group chats.
	Members []Member `json:"members,omitempty"`
	// Created timestamp (ns)
	CreatedTS int64 `json:"created_ts,omitempty"`
}

// Member is a group participant. OriginalName is the stable key; Nickname
// overrides it for rendering and mention matching.
type Member struct {
	OriginalName string `json:"original_name"`
	Nickname     string `json:"nickname,omitempty"`
}

// DisplayName returns the name used for rendering.
func (m Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.OriginalName
}
