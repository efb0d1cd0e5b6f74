package model

// ChangeKind identifies the shape of a change-feed event
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// RosterChange is one change-feed event for the roster. For insert and
// update the full record is carried; for delete only the ID is meaningful.
type RosterChange struct {
	Kind   ChangeKind `json:"kind"`
	Player Player     `json:"player"`
}

// SessionChange is one change-feed event for the singleton session record.
// A delete means the record was removed and readers should fall back to the
// inactive session.
type SessionChange struct {
	Kind    ChangeKind `json:"kind"`
	Session Session    `json:"session"`
}
