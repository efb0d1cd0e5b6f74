package scan

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/services/identity"
)

// SessionStarter is the session controller operation the buffer drives
// once an identity has been resolved and validated
type SessionStarter interface {
	StartSession(ctx context.Context, ident model.Identity) error
}

// Config holds scan buffer settings
type Config struct {
	// IdleTimeout is how long after the last keystroke the buffer is
	// finalized as a submission candidate. Barcode scanners emulate a
	// keyboard with no terminator key; the pause is the terminator.
	IdleTimeout time.Duration

	// EmailDomain is the institutional suffix a resolved identity must
	// carry to be accepted
	EmailDomain string
}

// DefaultConfig returns the reference deployment settings
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 500 * time.Millisecond,
		EmailDomain: identity.DefaultConfig().EmailDomain,
	}
}

// Buffer accumulates raw keystrokes into a candidate identifier and drives
// identity resolution. Finalization happens on Enter or after the idle
// timeout; while a resolution is in flight or a session is already in
// progress, keystrokes still accumulate but finalization is suppressed, so
// at most one resolver call is outstanding at any time.
type Buffer struct {
	cfg      Config
	resolver identity.Resolver
	sessions SessionStarter
	status   func() model.SessionStatus
	clock    clock.Clock
	logger   *slog.Logger

	// onFailure surfaces a resolution or validation failure to the
	// operator; may be nil
	onFailure func(error)

	mu       sync.Mutex
	buf      strings.Builder
	timer    clock.Timer
	inFlight bool
}

// NewBuffer creates a scan buffer. status reports the session state the
// buffer gates on; onFailure (optional) receives resolution failures.
func NewBuffer(
	cfg Config,
	resolver identity.Resolver,
	sessions SessionStarter,
	status func() model.SessionStatus,
	clk clock.Clock,
	logger *slog.Logger,
	onFailure func(error),
) *Buffer {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	return &Buffer{
		cfg:       cfg,
		resolver:  resolver,
		sessions:  sessions,
		status:    status,
		clock:     clk,
		logger:    logger.With(slog.String("component", "scan")),
		onFailure: onFailure,
	}
}

// Press feeds one keystroke into the buffer. '\r' and '\n' finalize
// immediately; printable characters append and re-arm the idle timer;
// everything else is ignored.
func (b *Buffer) Press(key rune) {
	if key == '\n' || key == '\r' {
		b.finalize()
		return
	}
	if !unicode.IsPrint(key) {
		return
	}

	b.mu.Lock()
	b.buf.WriteRune(key)
	if b.timer == nil {
		b.timer = b.clock.AfterFunc(b.cfg.IdleTimeout, b.finalize)
	} else {
		b.timer.Reset(b.cfg.IdleTimeout)
	}
	b.mu.Unlock()
}

// Type feeds a whole string through Press, as a convenience for tests and
// non-keyboard callers
func (b *Buffer) Type(s string) {
	for _, r := range s {
		b.Press(r)
	}
}

// Submit feeds a complete candidate and finalizes it immediately, for
// callers that already have the whole identifier (the scan API endpoint)
func (b *Buffer) Submit(s string) {
	b.Type(s)
	b.Press('\n')
}

// finalize turns the buffered keystrokes into a submission candidate and,
// unless suppressed, starts exactly one resolution for it
func (b *Buffer) finalize() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}

	if b.inFlight || !b.statusIdle() {
		// Keep accumulating; a later finalization may still submit. A
		// candidate held back by an in-flight resolution is reported so
		// the operator sees why nothing happened.
		reportInFlight := b.inFlight && strings.TrimSpace(b.buf.String()) != ""
		b.mu.Unlock()
		if reportInFlight {
			b.fail(model.ErrResolutionInFlight)
		}
		return
	}

	candidate := strings.TrimSpace(b.buf.String())
	b.buf.Reset()
	if candidate == "" {
		b.mu.Unlock()
		return
	}

	b.inFlight = true
	b.mu.Unlock()

	go b.resolve(candidate)
}

// resolve performs the identity lookup and session start off the input
// goroutine. Failures are reported to the operator; there is no retry, the
// player simply rescans.
func (b *Buffer) resolve(candidate string) {
	defer func() {
		b.mu.Lock()
		b.inFlight = false
		b.mu.Unlock()
	}()

	ident, err := b.resolver.Resolve(context.Background(), candidate)
	if err == nil {
		err = identity.Validate(ident, b.cfg.EmailDomain)
	}
	if err != nil {
		b.logger.Info("scan rejected",
			slog.String("candidate", candidate),
			slog.String("error", err.Error()))
		b.fail(err)
		return
	}

	if err := b.sessions.StartSession(context.Background(), ident); err != nil {
		b.logger.Error("failed to start session",
			slog.String("player_id", string(ident.ID)),
			slog.String("error", err.Error()))
		b.fail(err)
	}
}

func (b *Buffer) fail(err error) {
	if b.onFailure != nil {
		b.onFailure(err)
	}
}

// statusIdle reports whether no session is in progress. Caller holds mu.
func (b *Buffer) statusIdle() bool {
	if b.status == nil {
		return true
	}
	return b.status() == model.StatusInactive || b.status() == ""
}
