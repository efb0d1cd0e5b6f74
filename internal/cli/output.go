package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printRoster(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Session:
		o.printSession(v)
	case ImportResult:
		o.printImportResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Attempts   int       `json:"attempts"`
	LastPlayed time.Time `json:"last_played"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []Player `json:"entries"`
}

// Session response type
type Session struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// ImportResult response type
type ImportResult struct {
	Imported int `json:"imported"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.ID)
	fmt.Printf("Score: %d\n", p.Score)
	fmt.Printf("Attempts: %d\n", p.Attempts)
	if !p.LastPlayed.IsZero() {
		fmt.Printf("Last Played: %s\n", p.LastPlayed.Format("2006-01-02 15:04:05"))
	}
}

func (o *Output) printRoster(players []Player) {
	fmt.Printf("Roster (%d):\n", len(players))
	for _, p := range players {
		fmt.Printf("  %-12s %-30s score=%-4d attempts=%d\n", p.ID, p.Name, p.Score, p.Attempts)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	fmt.Println("Leaderboard:")
	for i, p := range l.Entries {
		fmt.Printf("  %2d. %-30s %d\n", i+1, p.Name, p.Score)
	}
	if len(l.Entries) == 0 {
		fmt.Println("  (empty)")
	}
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Status: %s\n", s.Status)
	if s.PlayerID != "" {
		fmt.Printf("Player: %s (%s)\n", s.Name, s.PlayerID)
	}
}

func (o *Output) printImportResult(r ImportResult) {
	fmt.Printf("Imported %d players\n", r.Imported)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
