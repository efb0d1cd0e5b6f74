package factory

import (
	"context"
	"sync"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/mocks"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage/memory"
	"github.com/dlsl-isg/reaction-ring/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	FakeResolver *FakeResolver
}

// FakeResolver is a scripted identity resolver: identities are registered up
// front, everything else resolves as unavailable
type FakeResolver struct {
	mu         sync.Mutex
	identities map[string]model.Identity
}

// Register makes an identity resolvable by its ID
func (f *FakeResolver) Register(ident model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[string(ident.ID)] = ident
}

func (f *FakeResolver) Resolve(ctx context.Context, id string) (model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.identities[id]
	if !ok {
		return model.Identity{}, model.ErrIdentityUnavailable
	}
	return ident, nil
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	resolver := &FakeResolver{identities: make(map[string]model.Identity)}

	app := newWithDependencies(store, mockClock, resolver, Config{}, testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		FakeResolver: resolver,
	}
}
