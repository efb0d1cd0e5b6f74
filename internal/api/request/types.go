package request

// ScanRequest submits a complete badge identifier, bypassing the keyboard
// wedge path
type ScanRequest struct {
	Candidate string `json:"candidate"`
}

// ScoreRequest records the outcome of one attempt
type ScoreRequest struct {
	Caught int `json:"caught"`
}
