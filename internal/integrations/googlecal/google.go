package googlecal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"daybook/internal/config"
)

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

// GoogleProvider talks to Google's OAuth endpoints and the Calendar v3 API.
type GoogleProvider struct {
	oauth      *oauth2.Config
	revokeURL  string
	apiOptions []option.ClientOption
	httpClient *http.Client
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		revokeURL:  googleRevokeURL,
		httpClient: http.DefaultClient,
	}
}

// AuthCodeURL asks for offline access and forces the consent screen so a
// refresh token is issued even on reconnect.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := g.oauth.Exchange(g.withHTTPClient(ctx), code)
	if err != nil {
		return nil, err
	}

	scopes := g.oauth.Scopes
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}, nil
}

func (g *GoogleProvider) Client(ctx context.Context, refreshToken string) (CalendarClient, error) {
	ctx = g.withHTTPClient(ctx)
	ts := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, g.apiOptions...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &googleCalendar{svc: svc}, nil
}

// Revoke invalidates a refresh (or access) token at Google.
func (g *GoogleProvider) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("revoke returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (g *GoogleProvider) withHTTPClient(ctx context.Context) context.Context {
	if g.httpClient == nil || g.httpClient == http.DefaultClient {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

type googleCalendar struct {
	svc *calendar.Service
}

func (c *googleCalendar) ListEvents(ctx context.Context, q EventQuery) ([]*calendar.Event, error) {
	resp, err := c.svc.Events.List("primary").
		TimeMin(q.TimeMin.UTC().Format(time.RFC3339Nano)).
		TimeMax(q.TimeMax.UTC().Format(time.RFC3339Nano)).
		MaxResults(q.MaxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
