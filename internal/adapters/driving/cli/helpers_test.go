package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/ports/driving"
)

// mockSessionService implements driving.SessionService for testing.
type mockSessionService struct {
	AuthenticateFunc func(ctx context.Context) (*domain.TokenSet, error)
	CalendarFunc     func(token *domain.TokenSet) (driving.CalendarService, error)
	calendar         *mockCalendarService
}

func newMockSession() *mockSessionService {
	return &mockSessionService{calendar: &mockCalendarService{}}
}

func (m *mockSessionService) Authenticate(ctx context.Context) (*domain.TokenSet, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return &domain.TokenSet{
		AccessToken: "access-token-value",
		IDToken:     "id-token-value",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (m *mockSessionService) Calendar(token *domain.TokenSet) (driving.CalendarService, error) {
	if m.CalendarFunc != nil {
		return m.CalendarFunc(token)
	}
	return m.calendar, nil
}

// mockCalendarService implements driving.CalendarService for testing.
type mockCalendarService struct {
	ProfileFunc func(ctx context.Context) (*domain.Profile, error)
	ListFunc    func(ctx context.Context, limit int) ([]domain.CalendarEvent, error)
	CreateFunc  func(ctx context.Context, subject string, durationMinutes int) (*domain.CalendarEvent, error)

	gotLimit    int
	gotSubject  string
	gotDuration int
}

func (m *mockCalendarService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx)
	}
	return &domain.Profile{DisplayName: "Ada Lovelace", Mail: "ada@contoso.com"}, nil
}

func (m *mockCalendarService) ListUpcomingEvents(ctx context.Context, limit int) ([]domain.CalendarEvent, error) {
	m.gotLimit = limit
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []domain.CalendarEvent{}, nil
}

func (m *mockCalendarService) CreateEvent(
	ctx context.Context, subject string, durationMinutes int,
) (*domain.CalendarEvent, error) {
	m.gotSubject = subject
	m.gotDuration = durationMinutes
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, subject, durationMinutes)
	}
	return &domain.CalendarEvent{ID: "evt-1", Subject: subject}, nil
}

// withSession injects svc for the duration of the test.
func withSession(t *testing.T, svc driving.SessionService) {
	t.Helper()
	old := sessionService
	oldBootstrap := bootstrap
	sessionService = svc
	t.Cleanup(func() {
		sessionService = old
		SetBootstrap(oldBootstrap)
	})
}

// resetFlags restores every flag to its default so tests do not leak
// values through the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns stdout and
// stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
