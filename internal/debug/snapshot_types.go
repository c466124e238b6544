package debug

// Snapshot is what /_debug/session returns.
// MUST NOT put secrets here (keys, delegations, signatures).
type Snapshot struct {
	Mode     string       `json:"mode"`     // "debug" or "production"
	Network  string       `json:"network"`  // "local", "ic" or "memory"
	Provider string       `json:"provider"` // identity provider adapter name
	Session  SessionView  `json:"session"`
	Notices  []NoticeView `json:"notices"` // most recent first
}

// SessionView is the safe part of the session state.
type SessionView struct {
	Ready            bool   `json:"ready"`
	Authenticated    string `json:"authenticated"` // "unknown", "false" or "true"
	Principal        string `json:"principal,omitempty"`
	ExpiresInSeconds int64  `json:"expiresInSeconds,omitempty"` // negative once expired
}

// NoticeView is a notice as shown to the user.
type NoticeView struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
	Visible  bool   `json:"visible"`
}
