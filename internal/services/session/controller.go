package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/services/scoring"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

// Controller owns the singleton session state machine: it gates whether a
// new scan may start a session and whether a score may be recorded.
//
// Calls that violate a state precondition are silent no-ops. Duplicate and
// late UI events (a double-tapped score button, a second scan racing the
// first) are expected in this setup, so idempotence is the contract rather
// than an error.
type Controller struct {
	storage storage.Store
	engine  *scoring.Engine
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new session controller
func NewController(storage storage.Store, engine *scoring.Engine, clk clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		engine:  engine,
		clock:   clk,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// Current returns the session record as the store sees it
func (c *Controller) Current(ctx context.Context) (model.Session, error) {
	return c.storage.ReadSession(ctx)
}

// StartSession puts the validated identity into play. Precondition: the
// current session is inactive; otherwise this is a no-op. A roster record is
// created for a previously-unseen ID (score 0, attempts 0); for a known ID
// only the name field is refreshed, and only when it changed.
func (c *Controller) StartSession(ctx context.Context, ident model.Identity) error {
	current, err := c.storage.ReadSession(ctx)
	if err != nil {
		return err
	}
	if !current.Idle() {
		c.logger.Debug("start ignored, session in progress",
			slog.String("player_id", string(current.PlayerID)))
		return nil
	}

	player, err := c.storage.GetPlayer(ctx, ident.ID)
	switch {
	case err == nil:
		if player.Name != ident.Name {
			player.Name = ident.Name
			if err := c.storage.WritePlayer(ctx, *player); err != nil {
				return err
			}
		}
	case errors.Is(err, model.ErrPlayerNotFound):
		fresh := model.Player{ID: ident.ID, Name: ident.Name, Score: 0, Attempts: 0}
		if err := c.storage.WritePlayer(ctx, fresh); err != nil {
			return err
		}
	default:
		return err
	}

	next := model.Session{PlayerID: ident.ID, Name: ident.Name, Status: model.StatusActive}
	if err := c.storage.WriteSession(ctx, next); err != nil {
		return err
	}

	c.logger.Info("session started",
		slog.String("player_id", string(ident.ID)),
		slog.String("name", ident.Name))
	return nil
}

// BeginScoring marks the active session as scoring. The scoring state is an
// optional intermediate; CommitScore accepts either. No-op unless active.
func (c *Controller) BeginScoring(ctx context.Context) error {
	current, err := c.storage.ReadSession(ctx)
	if err != nil {
		return err
	}
	if current.Status != model.StatusActive {
		return nil
	}

	current.Status = model.StatusScoring
	return c.storage.WriteSession(ctx, current)
}

// CommitScore records one attempt for the current player and ends the
// session. Precondition: the session is active or scoring and the player
// record exists; otherwise a no-op. A caught value outside the engine's
// range returns ErrCatchOutOfRange with no state change.
//
// The player write and the session reset are two independent record writes
// in that order; readers may transiently observe the new score with the old
// session and must tolerate it.
func (c *Controller) CommitScore(ctx context.Context, caught int) error {
	current, err := c.storage.ReadSession(ctx)
	if err != nil {
		return err
	}
	if current.Idle() {
		c.logger.Debug("score ignored, no session in progress")
		return nil
	}

	player, err := c.storage.GetPlayer(ctx, current.PlayerID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		c.logger.Warn("score ignored, player record missing",
			slog.String("player_id", string(current.PlayerID)))
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := c.engine.Apply(*player, caught, c.clock.Now())
	if err != nil {
		return err
	}

	if err := c.storage.WritePlayer(ctx, updated); err != nil {
		return err
	}
	if err := c.storage.WriteSession(ctx, model.InactiveSession()); err != nil {
		return err
	}

	c.logger.Info("score committed",
		slog.String("player_id", string(updated.ID)),
		slog.Int("caught", caught),
		slog.Int("score", updated.Score),
		slog.Int("attempts", updated.Attempts))
	return nil
}

// Reset forces the session back to inactive regardless of state
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.storage.WriteSession(ctx, model.InactiveSession()); err != nil {
		return err
	}
	c.logger.Info("session reset")
	return nil
}
