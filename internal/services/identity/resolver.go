package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// Resolver resolves a scanned or typed identifier to a validated identity
type Resolver interface {
	Resolve(ctx context.Context, id string) (model.Identity, error)
}

// Config holds resolver settings
type Config struct {
	// BaseURL is the student API endpoint
	BaseURL string

	// EmailDomain is the institutional email suffix a valid identity must
	// carry, e.g. "@dlsl.edu.ph"
	EmailDomain string

	// Timeout bounds one lookup; no retry is attempted after it fires
	Timeout time.Duration
}

// DefaultConfig returns the reference deployment settings
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://dlsl-student-api.onrender.com",
		EmailDomain: "@dlsl.edu.ph",
		Timeout:     10 * time.Second,
	}
}

// HTTPResolver resolves identities against the institutional student API
type HTTPResolver struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// Ensure HTTPResolver implements Resolver
var _ Resolver = (*HTTPResolver)(nil)

// NewHTTPResolver creates a resolver against the configured student API
func NewHTTPResolver(cfg Config, logger *slog.Logger) *HTTPResolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &HTTPResolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(slog.String("component", "identity")),
	}
}

// rawStudent mirrors the student API response body
type rawStudent struct {
	PartnerID    string `json:"partner_id"`
	EmailAddress string `json:"email_address"`
	Whitelist    any    `json:"whitelist"`
	Department   string `json:"department"`
}

// Resolve looks up the identifier and normalizes the response. The returned
// identity still needs Validate before it may start a session. Any transport
// or decoding failure collapses to ErrIdentityUnavailable; the operator is
// expected to rescan, no automatic retry happens here.
func (r *HTTPResolver) Resolve(ctx context.Context, id string) (model.Identity, error) {
	lookup := strings.ToUpper(strings.TrimSpace(id))
	if lookup == "" {
		return model.Identity{}, model.ErrIdentityInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/student?id=%s", strings.TrimSuffix(r.cfg.BaseURL, "/"), url.QueryEscape(lookup))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Identity{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("identity lookup failed",
			slog.String("id", lookup),
			slog.String("error", err.Error()))
		return model.Identity{}, model.ErrIdentityUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("identity lookup rejected",
			slog.String("id", lookup),
			slog.Int("status", resp.StatusCode))
		return model.Identity{}, model.ErrIdentityUnavailable
	}

	var raw rawStudent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Identity{}, model.ErrIdentityUnavailable
	}

	resolvedID := raw.PartnerID
	if resolvedID == "" {
		resolvedID = lookup
	}

	return model.Identity{
		ID:       model.PlayerID(resolvedID),
		Email:    raw.EmailAddress,
		Name:     ParseNameFromEmail(raw.EmailAddress),
		Eligible: coerceFlag(raw.Whitelist),
	}, nil
}

// Validate applies the eligibility rules: institutional email suffix,
// non-empty display name and the eligibility flag. Everything else is
// uniformly invalid.
func (r *HTTPResolver) Validate(ident model.Identity) error {
	return Validate(ident, r.cfg.EmailDomain)
}

// Validate reports whether the identity may start a session
func Validate(ident model.Identity, emailDomain string) error {
	if !strings.HasSuffix(ident.Email, emailDomain) {
		return model.ErrIdentityInvalid
	}
	if strings.TrimSpace(ident.Name) == "" {
		return model.ErrIdentityInvalid
	}
	if !ident.Eligible {
		return model.ErrIdentityInvalid
	}
	return nil
}

// coerceFlag interprets the API's loosely-typed whitelist field, which has
// been observed as "1", 1, true and "true"
func coerceFlag(v any) bool {
	s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v)))
	return s == "1" || s == "true"
}
