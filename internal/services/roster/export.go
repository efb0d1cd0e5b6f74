package roster

import (
	"encoding/json"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// exportFormatVersion tags exported files so a future importer can handle
// older shapes
const exportFormatVersion = 1

type exportPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Attempts   int    `json:"attempts"`
	LastPlayed int64  `json:"lastPlayed"`
}

type exportFile struct {
	Players    map[string]exportPlayer `json:"players"`
	Session    model.Session           `json:"session"`
	Version    int                     `json:"version"`
	ExportedAt string                  `json:"exportedAt"`
}

// Export serializes the cached roster and session into the interchange
// format accepted by Import. Timestamps travel as epoch milliseconds.
func (c *Cache) Export(now time.Time) ([]byte, error) {
	players := c.Players()
	session := c.Session()

	out := exportFile{
		Players:    make(map[string]exportPlayer, len(players)),
		Session:    session,
		Version:    exportFormatVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
	}
	for _, p := range players {
		out.Players[string(p.ID)] = exportPlayer{
			ID:         string(p.ID),
			Name:       p.Name,
			Score:      p.Score,
			Attempts:   p.Attempts,
			LastPlayed: p.LastPlayed.UnixMilli(),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
