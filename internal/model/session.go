package model

// SessionStatus is the lifecycle state of the singleton session
type SessionStatus string

const (
	StatusInactive SessionStatus = "inactive"
	StatusActive   SessionStatus = "active"
	StatusScoring  SessionStatus = "scoring"
)

// Session is the singleton record describing who, if anyone, is currently
// playing. It is overwritten in place, never appended.
type Session struct {
	PlayerID PlayerID      `json:"player_id"`
	Name     string        `json:"name"`
	Status   SessionStatus `json:"status"`
}

// InactiveSession is the canonical "no one is playing" record
func InactiveSession() Session {
	return Session{PlayerID: "", Name: "", Status: StatusInactive}
}

// Idle reports whether no session is in progress
func (s Session) Idle() bool {
	return s.Status == StatusInactive || s.Status == ""
}
