// Package googlecal manages a user's Google Calendar link: the OAuth
// consent round trip, encrypted refresh token storage, revocation and
// reading events.
package googlecal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daybook/internal/activity"
	"daybook/internal/jwt"
	"daybook/internal/storage"
	"daybook/internal/tokencrypt"
)

const ProviderName = "google_calendar"

var Scopes = []string{"https://www.googleapis.com/auth/calendar.events.readonly"}

type Store interface {
	GetIntegration(ctx context.Context, userID string, provider string) (*storage.OAuthIntegration, error)
	CreateIntegration(ctx context.Context, integration *storage.OAuthIntegration) error
	UpdateIntegration(ctx context.Context, integration *storage.OAuthIntegration) error
	DeleteIntegration(ctx context.Context, userID string, provider string) error
}

type IntegrationStatus struct {
	Connected bool     `json:"connected"`
	Scopes    []string `json:"scopes"`
}

type Manager struct {
	provider CalendarProvider
	store    Store
	state    *jwt.StateSigner
	cipher   *tokencrypt.Cipher
	recorder activity.Recorder
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewManager(provider CalendarProvider, store Store, state *jwt.StateSigner, cipher *tokencrypt.Cipher, recorder activity.Recorder, timeout time.Duration) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		state:    state,
		cipher:   cipher,
		recorder: recorder,
		timeout:  timeout,
		now:      time.Now,
		logger:   slog.With("component", "googlecal"),
	}
}

// AuthURL returns the consent URL for userID. Nothing is persisted; the
// signed state token carries everything the callback needs.
func (m *Manager) AuthURL(userID string) (string, error) {
	state, err := m.state.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return m.provider.AuthCodeURL(state), nil
}

func (m *Manager) VerifyState(state string) (*jwt.StateClaims, error) {
	claims, err := m.state.Verify(state)
	if err != nil {
		m.logger.Warn("Rejected OAuth state", "error", err)
		return nil, ErrInvalidState
	}
	return claims, nil
}

// HandleCallback completes the consent round trip for userID. The state is
// checked before anything else so a bad state never reaches the provider or
// the store.
func (m *Manager) HandleCallback(ctx context.Context, userID, code, state string) error {
	claims, err := m.VerifyState(state)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		m.logger.Warn("OAuth state user mismatch", "user_id", userID, "state_user_id", claims.UserID)
		return ErrStateMismatch
	}

	pctx, cancel := m.providerContext(ctx)
	tok, err := m.provider.Exchange(pctx, code)
	cancel()
	if err != nil {
		m.logger.Error("Authorization code exchange failed", "user_id", userID, "error", err)
		return ErrExchangeFailed
	}
	if tok.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	encrypted, err := m.cipher.Encrypt(tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	if err := m.upsert(ctx, userID, encrypted, tok.Scopes); err != nil {
		return err
	}

	m.audit(ctx, userID, activity.ActionConnect, "Google Calendar connected")
	m.logger.Info("Google Calendar connected", "user_id", userID)
	return nil
}

func (m *Manager) upsert(ctx context.Context, userID, encrypted string, scopes []string) error {
	now := m.now().UTC()

	existing, err := m.store.GetIntegration(ctx, userID, ProviderName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = m.store.CreateIntegration(ctx, &storage.OAuthIntegration{
			ID:                    uuid.NewString(),
			UserID:                userID,
			Provider:              ProviderName,
			RefreshTokenEncrypted: &encrypted,
			Scopes:                scopes,
			ConnectedAt:           now,
			UpdatedAt:             now,
		})
		if !errors.Is(err, storage.ErrDuplicate) {
			break
		}
		// A concurrent callback created the row first; overwrite it.
		existing, err = m.store.GetIntegration(ctx, userID, ProviderName)
		if err != nil {
			break
		}
		fallthrough
	case err == nil:
		existing.RefreshTokenEncrypted = &encrypted
		existing.Scopes = scopes
		existing.ConnectedAt = now
		existing.UpdatedAt = now
		err = m.store.UpdateIntegration(ctx, existing)
	}
	if err != nil {
		return fmt.Errorf("failed to store integration: %w", err)
	}
	return nil
}

// ClientForUser returns a calendar client authorised with the user's
// stored refresh token.
func (m *Manager) ClientForUser(ctx context.Context, userID string) (CalendarClient, error) {
	integration, err := m.store.GetIntegration(ctx, userID, ProviderName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load integration: %w", err)
	}
	if integration.RefreshTokenEncrypted == nil {
		return nil, ErrNotConnected
	}

	refresh, err := m.cipher.Decrypt(*integration.RefreshTokenEncrypted)
	if err != nil {
		m.logger.Error("Failed to decrypt refresh token", "user_id", userID, "error", err)
		return nil, ErrDecryptFailed
	}

	return m.provider.Client(ctx, refresh)
}

// Status never fails; storage errors are logged and reported as disconnected.
func (m *Manager) Status(ctx context.Context, userID string) IntegrationStatus {
	integration, err := m.store.GetIntegration(ctx, userID, ProviderName)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Error("Failed to load integration status", "user_id", userID, "error", err)
		}
		return IntegrationStatus{Connected: false, Scopes: []string{}}
	}
	if integration.RefreshTokenEncrypted == nil {
		return IntegrationStatus{Connected: false, Scopes: []string{}}
	}

	scopes := []string(integration.Scopes)
	if scopes == nil {
		scopes = []string{}
	}
	return IntegrationStatus{Connected: true, Scopes: scopes}
}

// Disconnect revokes the refresh token at the provider if possible and
// always removes the stored integration.
func (m *Manager) Disconnect(ctx context.Context, userID string) error {
	integration, err := m.store.GetIntegration(ctx, userID, ProviderName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load integration: %w", err)
	}

	if integration.RefreshTokenEncrypted != nil {
		m.revoke(ctx, userID, *integration.RefreshTokenEncrypted)
	}

	if err := m.store.DeleteIntegration(ctx, userID, ProviderName); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}

	m.audit(ctx, userID, activity.ActionDisconnect, "Google Calendar disconnected")
	m.logger.Info("Google Calendar disconnected", "user_id", userID)
	return nil
}

func (m *Manager) revoke(ctx context.Context, userID, encrypted string) {
	refresh, err := m.cipher.Decrypt(encrypted)
	if err != nil {
		m.logger.Warn("Skipping revoke, refresh token unreadable", "user_id", userID, "error", err)
		return
	}

	pctx, cancel := m.providerContext(ctx)
	defer cancel()
	if err := m.provider.Revoke(pctx, refresh); err != nil {
		m.logger.Warn("Failed to revoke refresh token", "user_id", userID, "error", err)
	}
}

// ListEvents reads events from the user's primary calendar in [TimeMin, TimeMax).
// A zero MaxResults means unset and uses DefaultMaxResults.
func (m *Manager) ListEvents(ctx context.Context, userID string, q EventQuery) ([]Event, error) {
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.MaxResults < 1 || q.MaxResults > MaxMaxResults {
		return nil, fmt.Errorf("%w: maxResults must be between 1 and %d", ErrInvalidQuery, MaxMaxResults)
	}
	if q.TimeMin.IsZero() || q.TimeMax.IsZero() || !q.TimeMin.Before(q.TimeMax) {
		return nil, fmt.Errorf("%w: timeMin must be before timeMax", ErrInvalidQuery)
	}

	pctx, cancel := m.providerContext(ctx)
	defer cancel()

	client, err := m.ClientForUser(pctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := client.ListEvents(pctx, q)
	if err != nil {
		mapped := classifyProviderError(err)
		m.logger.Error("Calendar events request failed", "user_id", userID, "mapped", mapped, "error", err)
		return nil, mapped
	}
	return normalizeEvents(items), nil
}

func (m *Manager) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) audit(ctx context.Context, userID string, action activity.ActionType, title string) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		Entity:      activity.EntityIntegration,
		EntityID:    ProviderName,
		EntityTitle: title,
	})
}
