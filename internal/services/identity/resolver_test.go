package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestParseNameFromEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"single word", "juan@dlsl.edu.ph", "Juan"},
		{"underscores become spaces", "juan_dela_cruz@dlsl.edu.ph", "Juan Dela Cruz"},
		{"hyphenated segment capitalized", "mary-jane_santos@dlsl.edu.ph", "Mary-Jane Santos"},
		{"mixed case normalized", "JUAN_DELA_CRUZ@dlsl.edu.ph", "Juan Dela Cruz"},
		{"double underscore skipped", "juan__cruz@dlsl.edu.ph", "Juan Cruz"},
		{"empty email", "", ""},
		{"empty local part", "@dlsl.edu.ph", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNameFromEmail(tt.email))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := model.Identity{ID: "2021001", Email: "juan_dela_cruz@dlsl.edu.ph", Name: "Juan Dela Cruz", Eligible: true}

	t.Run("valid identity passes", func(t *testing.T) {
		assert.NoError(t, Validate(valid, "@dlsl.edu.ph"))
	})

	t.Run("foreign email domain rejected", func(t *testing.T) {
		ident := valid
		ident.Email = "juan@gmail.com"
		assert.ErrorIs(t, Validate(ident, "@dlsl.edu.ph"), model.ErrIdentityInvalid)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		ident := valid
		ident.Name = "  "
		assert.ErrorIs(t, Validate(ident, "@dlsl.edu.ph"), model.ErrIdentityInvalid)
	})

	t.Run("ineligible rejected", func(t *testing.T) {
		ident := valid
		ident.Eligible = false
		assert.ErrorIs(t, Validate(ident, "@dlsl.edu.ph"), model.ErrIdentityInvalid)
	})
}

type ResolverSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	ctx     context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.ctx = context.Background()
}

func (s *ResolverSuite) TearDownTest() {
	s.server.Close()
}

func (s *ResolverSuite) resolver() *HTTPResolver {
	cfg := DefaultConfig()
	cfg.BaseURL = s.server.URL
	return NewHTTPResolver(cfg, testutil.NopLogger())
}

func (s *ResolverSuite) TestResolveSucceeds() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/student", r.URL.Path)
		s.Equal("2021001", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"partner_id":"2021001","email_address":"juan_dela_cruz@dlsl.edu.ph","whitelist":"1","department":"CIT"}`))
		require.NoError(s.T(), err)
	}

	ident, err := s.resolver().Resolve(s.ctx, "2021001")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("2021001"), ident.ID)
	s.Equal("juan_dela_cruz@dlsl.edu.ph", ident.Email)
	s.Equal("Juan Dela Cruz", ident.Name)
	s.True(ident.Eligible)
}

func (s *ResolverSuite) TestResolveUppercasesAndTrimsLookup() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("2021001A", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"partner_id":"2021001A","email_address":"a@dlsl.edu.ph","whitelist":true}`))
	}

	_, err := s.resolver().Resolve(s.ctx, "  2021001a ")
	s.Require().NoError(err)
}

func (s *ResolverSuite) TestResolveFallsBackToLookupID() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email_address":"juan@dlsl.edu.ph","whitelist":1}`))
	}

	ident, err := s.resolver().Resolve(s.ctx, "2021001")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("2021001"), ident.ID)
	s.True(ident.Eligible)
}

func (s *ResolverSuite) TestResolveCoercesWhitelistVariants() {
	for _, body := range []string{
		`{"partner_id":"p","email_address":"a@dlsl.edu.ph","whitelist":"true"}`,
		`{"partner_id":"p","email_address":"a@dlsl.edu.ph","whitelist":1}`,
	} {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}
		ident, err := s.resolver().Resolve(s.ctx, "p")
		s.Require().NoError(err)
		s.True(ident.Eligible)
	}
}

func (s *ResolverSuite) TestResolveTreatsZeroWhitelistAsIneligible() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"partner_id":"p","email_address":"a@dlsl.edu.ph","whitelist":"0"}`))
	}

	ident, err := s.resolver().Resolve(s.ctx, "p")
	s.Require().NoError(err)
	s.False(ident.Eligible)
}

func (s *ResolverSuite) TestResolveEmptyIDIsInvalid() {
	_, err := s.resolver().Resolve(s.ctx, "   ")
	s.ErrorIs(err, model.ErrIdentityInvalid)
}

func (s *ResolverSuite) TestResolveNotFoundIsUnavailable() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	_, err := s.resolver().Resolve(s.ctx, "2021001")
	s.ErrorIs(err, model.ErrIdentityUnavailable)
}

func (s *ResolverSuite) TestResolveMalformedBodyIsUnavailable() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}

	_, err := s.resolver().Resolve(s.ctx, "2021001")
	s.ErrorIs(err, model.ErrIdentityUnavailable)
}
