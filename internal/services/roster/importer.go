package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

// DefaultChunkSize bounds one upsert request in the bulk import path
const DefaultChunkSize = 500

// ProgressFunc reports cumulative import progress after each applied chunk
type ProgressFunc func(imported, total int)

// importFile is the accepted upload shape. Unknown top-level keys are
// ignored.
type importFile struct {
	Players map[string]json.RawMessage `json:"players"`
}

// importRecord is one player entry in an import file. Every field is
// optional; the batch key supplies a missing ID and numeric fields default
// to zero. Exports from spreadsheet tooling carry numerics as strings, so
// the numeric fields decode loosely and are coerced afterwards. lastPlayed
// is epoch milliseconds.
type importRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      any    `json:"score"`
	Attempts   any    `json:"attempts"`
	LastPlayed any    `json:"lastPlayed"`
}

// Importer performs the bulk roster merge: validated records upserted by ID
// in fixed-size chunks. The import is at-least-once and non-transactional;
// chunks applied before a failing record stay applied.
type Importer struct {
	storage   storage.Store
	chunkSize int
	clock     clock.Clock
	logger    *slog.Logger
}

// NewImporter creates an importer writing through the given store
func NewImporter(store storage.Store, chunkSize int, clk clock.Clock, logger *slog.Logger) *Importer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Importer{
		storage:   store,
		chunkSize: chunkSize,
		clock:     clk,
		logger:    logger.With(slog.String("component", "import")),
	}
}

// Import parses an exported JSON file and upserts its players into the
// roster, reporting progress after each chunk. It returns the number of
// records applied, which on error counts the chunks written before the
// abort.
func (im *Importer) Import(ctx context.Context, data []byte, progress ProgressFunc) (int, error) {
	var file importFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrImportMalformed, err)
	}
	if file.Players == nil {
		return 0, fmt.Errorf("%w: missing players map", model.ErrImportMalformed)
	}

	// Fixed processing order so a failing record aborts at a predictable
	// point
	keys := make([]string, 0, len(file.Players))
	for key := range file.Players {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := len(keys)
	imported := 0
	chunk := make([]model.Player, 0, im.chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := im.storage.UpsertPlayers(ctx, chunk); err != nil {
			return err
		}
		imported += len(chunk)
		chunk = chunk[:0]
		if progress != nil {
			progress(imported, total)
		}
		return nil
	}

	for _, key := range keys {
		player, err := im.parseRecord(key, file.Players[key])
		if err != nil {
			return imported, err
		}
		chunk = append(chunk, player)
		if len(chunk) == im.chunkSize {
			if err := flush(); err != nil {
				return imported, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, err
	}

	im.logger.Info("import complete", slog.Int("players", imported))
	return imported, nil
}

// parseRecord validates and normalizes one entry: the batch key backs a
// missing ID, numerics default to zero and a missing or non-positive
// timestamp becomes "now"
func (im *Importer) parseRecord(key string, raw json.RawMessage) (model.Player, error) {
	if !isJSONObject(raw) {
		return model.Player{}, fmt.Errorf("%w: invalid player record for key %q", model.ErrImportMalformed, key)
	}

	var rec importRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.Player{}, fmt.Errorf("%w: invalid player record for key %q: %v", model.ErrImportMalformed, key, err)
	}

	id := rec.ID
	if id == "" {
		id = key
	}
	if id == "" {
		return model.Player{}, fmt.Errorf("%w: missing id for player key %q", model.ErrImportMalformed, key)
	}

	score, err := coerceNumber(rec.Score)
	if err != nil {
		return model.Player{}, fmt.Errorf("%w: invalid score for player key %q: %v", model.ErrImportMalformed, key, err)
	}
	attempts, err := coerceNumber(rec.Attempts)
	if err != nil {
		return model.Player{}, fmt.Errorf("%w: invalid attempts for player key %q: %v", model.ErrImportMalformed, key, err)
	}
	playedAt, err := coerceNumber(rec.LastPlayed)
	if err != nil {
		return model.Player{}, fmt.Errorf("%w: invalid lastPlayed for player key %q: %v", model.ErrImportMalformed, key, err)
	}

	lastPlayed := im.clock.Now()
	if playedAt > 0 {
		lastPlayed = time.UnixMilli(int64(playedAt))
	}

	return model.Player{
		ID:         model.PlayerID(id),
		Name:       rec.Name,
		Score:      int(score),
		Attempts:   int(attempts),
		LastPlayed: lastPlayed,
	}, nil
}

// coerceNumber normalizes the numeric shapes import files carry: absent or
// null becomes zero, JSON numbers pass through and numeric strings are
// parsed. An empty string also counts as absent.
func coerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// isJSONObject reports whether the raw value is a JSON object (a null or
// scalar entry aborts the import)
func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}
