package googlecal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"daybook/internal/activity"
	"daybook/internal/jwt"
	"daybook/internal/storage"
	"daybook/internal/storage/storagetest"
	"daybook/internal/tokencrypt"
)

type fakeClient struct {
	events []*calendar.Event
	err    error
	query  EventQuery
}

func (c *fakeClient) ListEvents(ctx context.Context, q EventQuery) ([]*calendar.Event, error) {
	c.query = q
	return c.events, c.err
}

type fakeProvider struct {
	mu            sync.Mutex
	token         *Token
	exchangeErr   error
	exchanges     int
	revoked       []string
	revokeErr     error
	client        *fakeClient
	clientRefresh string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchanges++
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.token, nil
}

func (p *fakeProvider) Client(ctx context.Context, refreshToken string) (CalendarClient, error) {
	p.clientRefresh = refreshToken
	return p.client, nil
}

func (p *fakeProvider) Revoke(ctx context.Context, token string) error {
	p.revoked = append(p.revoked, token)
	return p.revokeErr
}

type recorder struct{ entries []activity.Entry }

func (r *recorder) Record(ctx context.Context, e activity.Entry) { r.entries = append(r.entries, e) }

// writeCountingStore counts integration writes.
type writeCountingStore struct {
	storage.Provider
	writes int
}

func (s *writeCountingStore) CreateIntegration(ctx context.Context, in *storage.OAuthIntegration) error {
	s.writes++
	return s.Provider.CreateIntegration(ctx, in)
}

func (s *writeCountingStore) UpdateIntegration(ctx context.Context, in *storage.OAuthIntegration) error {
	s.writes++
	return s.Provider.UpdateIntegration(ctx, in)
}

func (s *writeCountingStore) DeleteIntegration(ctx context.Context, userID, provider string) error {
	s.writes++
	return s.Provider.DeleteIntegration(ctx, userID, provider)
}

type fixture struct {
	m        *Manager
	provider *fakeProvider
	store    *writeCountingStore
	rec      *recorder
	cipher   *tokencrypt.Cipher
}

func newCipher(t *testing.T) *tokencrypt.Cipher {
	t.Helper()
	key := make([]byte, tokencrypt.KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	c, err := tokencrypt.New(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("tokencrypt.New: %v", err)
	}
	return c
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	signer, err := jwt.NewStateSigner(secret, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewStateSigner: %v", err)
	}
	f := &fixture{
		provider: &fakeProvider{
			token:  &Token{AccessToken: "at", RefreshToken: "rt-1", Scopes: Scopes},
			client: &fakeClient{},
		},
		store:  &writeCountingStore{Provider: storagetest.New(t)},
		rec:    &recorder{},
		cipher: newCipher(t),
	}
	f.m = NewManager(f.provider, f.store, signer, f.cipher, f.rec, time.Second)
	return f
}

func stateFromURL(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	return u.Query().Get("state")
}

func TestConnectFlow(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	authURL, err := f.m.AuthURL("u1")
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	if f.store.writes != 0 {
		t.Fatalf("AuthURL must not persist anything")
	}

	if err := f.m.HandleCallback(ctx, "u1", "code", stateFromURL(t, authURL)); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	st := f.m.Status(ctx, "u1")
	if !st.Connected || len(st.Scopes) != 1 || st.Scopes[0] != Scopes[0] {
		t.Fatalf("unexpected status: %+v", st)
	}

	row, err := f.store.GetIntegration(ctx, "u1", ProviderName)
	if err != nil {
		t.Fatalf("GetIntegration: %v", err)
	}
	if *row.RefreshTokenEncrypted == "rt-1" {
		t.Fatalf("refresh token must be stored encrypted")
	}
	if plain, _ := f.cipher.Decrypt(*row.RefreshTokenEncrypted); plain != "rt-1" {
		t.Fatalf("stored token decrypts to %q", plain)
	}

	if len(f.rec.entries) != 1 || f.rec.entries[0].Action != activity.ActionConnect {
		t.Fatalf("expected connect audit entry, got %+v", f.rec.entries)
	}
}

func TestReconnectUpdatesExistingRow(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	for _, rt := range []string{"rt-1", "rt-2"} {
		f.provider.token = &Token{RefreshToken: rt, Scopes: Scopes}
		authURL, _ := f.m.AuthURL("u1")
		if err := f.m.HandleCallback(ctx, "u1", "code", stateFromURL(t, authURL)); err != nil {
			t.Fatalf("HandleCallback(%s): %v", rt, err)
		}
	}

	client, err := f.m.ClientForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ClientForUser: %v", err)
	}
	if client == nil || f.provider.clientRefresh != "rt-2" {
		t.Fatalf("expected latest refresh token, got %q", f.provider.clientRefresh)
	}
}

func TestCallback_RejectsBadStateWithoutTouchingRows(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	foreign, _ := jwt.NewStateSigner("other-secret", 10*time.Minute)
	foreignState, _ := foreign.Issue("u1")

	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	old, _ := jwt.NewStateSigner("secret", 10*time.Minute)
	old.WithClock(func() time.Time { return issued })
	expiredState, _ := old.Issue("u1")

	authURL, _ := f.m.AuthURL("someone-else")
	otherUserState := stateFromURL(t, authURL)

	cases := []struct {
		name  string
		state string
		want  error
	}{
		{"foreign key", foreignState, ErrInvalidState},
		{"expired", expiredState, ErrInvalidState},
		{"garbage", "not-a-jwt", ErrInvalidState},
		{"mismatch", otherUserState, ErrStateMismatch},
	}
	for _, tc := range cases {
		if err := f.m.HandleCallback(ctx, "u1", "code", tc.state); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if f.store.writes != 0 {
		t.Fatalf("expected no integration writes, got %d", f.store.writes)
	}
	if f.provider.exchanges != 0 {
		t.Fatalf("expected no code exchanges, got %d", f.provider.exchanges)
	}
	if _, err := f.store.GetIntegration(ctx, "u1", ProviderName); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no integration row, got %v", err)
	}
}

func TestCallback_ExchangeFailures(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	f.provider.exchangeErr = errors.New("invalid_grant")
	authURL, _ := f.m.AuthURL("u1")
	if err := f.m.HandleCallback(ctx, "u1", "code", stateFromURL(t, authURL)); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed, got %v", err)
	}

	f.provider.exchangeErr = nil
	f.provider.token = &Token{AccessToken: "at"}
	authURL, _ = f.m.AuthURL("u1")
	if err := f.m.HandleCallback(ctx, "u1", "code", stateFromURL(t, authURL)); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}

	if f.store.writes != 0 {
		t.Fatalf("expected no writes, got %d", f.store.writes)
	}
}

func TestClientForUser_Errors(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	if _, err := f.m.ClientForUser(ctx, "u1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	now := time.Now().UTC()
	garbage := "AAAA" + base64.StdEncoding.EncodeToString(make([]byte, 40))
	err := f.store.CreateIntegration(ctx, &storage.OAuthIntegration{
		ID: "i1", UserID: "u1", Provider: ProviderName, RefreshTokenEncrypted: &garbage,
		ConnectedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateIntegration: %v", err)
	}
	if _, err := f.m.ClientForUser(ctx, "u1"); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestStatus_Disconnected(t *testing.T) {
	f := newFixture(t, "secret")
	st := f.m.Status(context.Background(), "nobody")
	if st.Connected || st.Scopes == nil || len(st.Scopes) != 0 {
		t.Fatalf("expected disconnected with empty scopes, got %+v", st)
	}
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t, "secret")
	ctx := context.Background()

	// Absent integration is a no-op
	if err := f.m.Disconnect(ctx, "u1"); err != nil {
		t.Fatalf("Disconnect without integration: %v", err)
	}
	if f.store.writes != 0 || len(f.provider.revoked) != 0 {
		t.Fatalf("expected no side effects for absent integration")
	}

	authURL, _ := f.m.AuthURL("u1")
	if err := f.m.HandleCallback(ctx, "u1", "code", stateFromURL(t, authURL)); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	// Revocation failures do not block deletion
	f.provider.revokeErr = errors.New("upstream down")
	if err := f.m.Disconnect(ctx, "u1"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if len(f.provider.revoked) != 1 || f.provider.revoked[0] != "rt-1" {
		t.Fatalf("expected revoke with decrypted token, got %v", f.provider.revoked)
	}
	if f.m.Status(ctx, "u1").Connected {
		t.Fatalf("expected disconnected after Disconnect")
	}
	last := f.rec.entries[len(f.rec.entries)-1]
	if last.Action != activity.ActionDisconnect {
		t.Fatalf("expected disconnect audit entry, got %+v", last)
	}
}

func connect(t *testing.T, f *fixture) {
	t.Helper()
	authURL, _ := f.m.AuthURL("u1")
	if err := f.m.HandleCallback(context.Background(), "u1", "code", stateFromURL(t, authURL)); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
}

func TestListEvents(t *testing.T) {
	f := newFixture(t, "secret")
	connect(t, f)

	f.provider.client.events = []*calendar.Event{
		{
			Id:    "e1",
			Start: &calendar.EventDateTime{DateTime: "2024-01-01T10:00:00Z", TimeZone: "UTC"},
			End:   &calendar.EventDateTime{DateTime: "2024-01-01T11:00:00Z"},
			ConferenceData: &calendar.ConferenceData{EntryPoints: []*calendar.EntryPoint{
				{EntryPointType: "phone", Uri: "tel:+1"},
				{EntryPointType: "video", Uri: "https://meet.example.com/abc"},
			}},
			HangoutLink: "https://hangouts.example.com/legacy",
		},
		{
			Id:          "e2",
			Summary:     "Standup",
			Start:       &calendar.EventDateTime{Date: "2024-01-01"},
			End:         &calendar.EventDateTime{Date: "2024-01-02"},
			HangoutLink: "https://hangouts.example.com/legacy",
		},
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events, err := f.m.ListEvents(context.Background(), "u1", EventQuery{TimeMin: from, TimeMax: from.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if f.provider.client.query.MaxResults != DefaultMaxResults {
		t.Fatalf("expected default maxResults, got %d", f.provider.client.query.MaxResults)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Summary != "No title" || events[0].MeetLink != "https://meet.example.com/abc" || events[0].Start.TimeZone != "UTC" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Summary != "Standup" || events[1].MeetLink != "https://hangouts.example.com/legacy" || events[1].Start.Date != "2024-01-01" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestListEvents_Validation(t *testing.T) {
	f := newFixture(t, "secret")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bad := []EventQuery{
		{TimeMin: from, TimeMax: from},
		{TimeMin: from.Add(time.Hour), TimeMax: from},
		{TimeMax: from},
		{TimeMin: from, TimeMax: from.Add(time.Hour), MaxResults: 2501},
		{TimeMin: from, TimeMax: from.Add(time.Hour), MaxResults: -1},
	}
	for i, q := range bad {
		if _, err := f.m.ListEvents(context.Background(), "u1", q); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("case %d: expected ErrInvalidQuery, got %v", i, err)
		}
	}

	if _, err := f.m.ListEvents(context.Background(), "u1", EventQuery{TimeMin: from, TimeMax: from.Add(time.Hour)}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestListEvents_ProviderErrors(t *testing.T) {
	f := newFixture(t, "secret")
	connect(t, f)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := EventQuery{TimeMin: from, TimeMax: from.Add(time.Hour)}

	cases := []struct {
		err  error
		want error
	}{
		{&googleapi.Error{Code: http.StatusUnauthorized}, ErrAccessRevoked},
		{&googleapi.Error{Code: http.StatusForbidden}, ErrAccessRevoked},
		{&googleapi.Error{Code: http.StatusBadRequest}, ErrInvalidParameters},
		{&googleapi.Error{Code: http.StatusInternalServerError}, ErrUpstreamFailure},
		{errors.New("connection reset"), ErrUpstreamFailure},
	}
	for _, tc := range cases {
		f.provider.client.err = tc.err
		if _, err := f.m.ListEvents(context.Background(), "u1", q); !errors.Is(err, tc.want) {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.want, err)
		}
	}
}
