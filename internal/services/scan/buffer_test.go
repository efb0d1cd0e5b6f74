package scan

import (
	"context"
	"testing"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/mocks"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/testutil"
	"github.com/stretchr/testify/suite"
)

// fakeResolver records lookups and optionally blocks until released,
// simulating a slow student API call
type fakeResolver struct {
	calls chan string
	gate  chan struct{}
	ident model.Identity
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, id string) (model.Identity, error) {
	f.calls <- id
	if f.gate != nil {
		<-f.gate
	}
	return f.ident, f.err
}

type fakeStarter struct {
	started chan model.Identity
}

func (f *fakeStarter) StartSession(ctx context.Context, ident model.Identity) error {
	f.started <- ident
	return nil
}

type BufferSuite struct {
	suite.Suite
	resolver *fakeResolver
	starter  *fakeStarter
	clock    *mocks.MockClock
	status   model.SessionStatus
	failures chan error
	buffer   *Buffer
}

func TestBufferSuite(t *testing.T) {
	suite.Run(t, new(BufferSuite))
}

func (s *BufferSuite) SetupTest() {
	s.resolver = &fakeResolver{
		calls: make(chan string, 16),
		ident: model.Identity{ID: "2021001", Email: "juan_dela_cruz@dlsl.edu.ph", Name: "Juan Dela Cruz", Eligible: true},
	}
	s.starter = &fakeStarter{started: make(chan model.Identity, 16)}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.status = model.StatusInactive
	s.failures = make(chan error, 16)
	s.buffer = NewBuffer(
		DefaultConfig(),
		s.resolver,
		s.starter,
		func() model.SessionStatus { return s.status },
		s.clock,
		testutil.NopLogger(),
		func(err error) { s.failures <- err },
	)
}

func (s *BufferSuite) expectResolve(candidate string) {
	select {
	case got := <-s.resolver.calls:
		s.Equal(candidate, got)
	case <-time.After(time.Second):
		s.FailNow("resolver was not called")
	}
}

func (s *BufferSuite) expectNoResolve() {
	select {
	case got := <-s.resolver.calls:
		s.FailNowf("unexpected resolver call", "candidate %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *BufferSuite) expectStarted() model.Identity {
	select {
	case ident := <-s.starter.started:
		return ident
	case <-time.After(time.Second):
		s.FailNow("session was not started")
		return model.Identity{}
	}
}

func (s *BufferSuite) TestEnterFinalizesImmediately() {
	s.buffer.Type("2021001")
	s.buffer.Press('\n')

	s.expectResolve("2021001")
	ident := s.expectStarted()
	s.Equal(model.PlayerID("2021001"), ident.ID)
}

func (s *BufferSuite) TestIdleTimeoutFinalizes() {
	s.buffer.Type("2021001")
	s.clock.Advance(500 * time.Millisecond)

	s.expectResolve("2021001")
	s.expectStarted()
}

func (s *BufferSuite) TestKeystrokesReArmTheIdleTimer() {
	s.buffer.Type("2021")
	s.clock.Advance(400 * time.Millisecond)
	s.buffer.Type("001")
	s.clock.Advance(400 * time.Millisecond)
	s.expectNoResolve()

	s.clock.Advance(100 * time.Millisecond)
	s.expectResolve("2021001")
}

func (s *BufferSuite) TestCandidateIsTrimmed() {
	s.buffer.Type("  2021001  ")
	s.buffer.Press('\n')

	s.expectResolve("2021001")
}

func (s *BufferSuite) TestEmptySubmissionIsDiscarded() {
	s.buffer.Press('\n')
	s.buffer.Type("   ")
	s.buffer.Press('\r')

	s.expectNoResolve()
}

func (s *BufferSuite) TestNonPrintableKeysAreIgnored() {
	s.buffer.Press('\t')
	s.buffer.Press(0x1b)
	s.buffer.Press('\n')

	s.expectNoResolve()
}

func (s *BufferSuite) TestSuppressedWhileSessionInProgress() {
	s.status = model.StatusActive

	s.buffer.Type("2021001")
	s.buffer.Press('\n')

	s.expectNoResolve()
}

func (s *BufferSuite) TestAtMostOneResolutionInFlight() {
	s.resolver.gate = make(chan struct{})

	s.buffer.Type("2021001")
	s.buffer.Press('\n')
	s.expectResolve("2021001")

	// A second submission while the first is in flight is suppressed, the
	// keystrokes keep accumulating
	s.buffer.Type("2021002")
	s.buffer.Press('\n')
	s.expectNoResolve()

	close(s.resolver.gate)
	s.expectStarted()

	// Once clear, the retained buffer can be submitted
	s.Require().Eventually(func() bool {
		s.buffer.Press('\n')
		select {
		case got := <-s.resolver.calls:
			s.Equal("2021002", got)
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func (s *BufferSuite) TestInFlightSubmissionIsReported() {
	s.resolver.gate = make(chan struct{})

	s.buffer.Type("2021001")
	s.buffer.Press('\n')
	s.expectResolve("2021001")

	s.buffer.Type("2021002")
	s.buffer.Press('\n')

	select {
	case err := <-s.failures:
		s.ErrorIs(err, model.ErrResolutionInFlight)
	case <-time.After(time.Second):
		s.FailNow("in-flight rejection was not surfaced")
	}

	close(s.resolver.gate)
	s.expectStarted()
}

func (s *BufferSuite) TestResolutionFailureIsSurfaced() {
	s.resolver.err = model.ErrIdentityUnavailable

	s.buffer.Type("2021001")
	s.buffer.Press('\n')

	select {
	case err := <-s.failures:
		s.ErrorIs(err, model.ErrIdentityUnavailable)
	case <-time.After(time.Second):
		s.FailNow("failure was not surfaced")
	}
	select {
	case <-s.starter.started:
		s.FailNow("session should not start on a failed lookup")
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *BufferSuite) TestIneligibleIdentityIsRejected() {
	s.resolver.ident.Eligible = false

	s.buffer.Type("2021001")
	s.buffer.Press('\n')

	select {
	case err := <-s.failures:
		s.ErrorIs(err, model.ErrIdentityInvalid)
	case <-time.After(time.Second):
		s.FailNow("failure was not surfaced")
	}
}
