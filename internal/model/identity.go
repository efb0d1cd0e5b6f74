package model

// Identity is a validated identity returned by the identity resolver
type Identity struct {
	ID       PlayerID `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Eligible bool     `json:"eligible"`
}
