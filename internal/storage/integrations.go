package storage

import "context"

const integrationColumns = `id, user_id, provider, refresh_token_encrypted, scopes, connected_at, updated_at`

func (p *SQLProvider) GetIntegration(ctx context.Context, userID string, provider string) (*OAuthIntegration, error) {
	var in OAuthIntegration
	err := p.getOne(ctx, &in, `SELECT `+integrationColumns+` FROM oauth_integrations WHERE user_id = ? AND provider = ?`, userID, provider)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (p *SQLProvider) CreateIntegration(ctx context.Context, in *OAuthIntegration) error {
	return p.insert(ctx, `INSERT INTO oauth_integrations (`+integrationColumns+`)
		VALUES (:id, :user_id, :provider, :refresh_token_encrypted, :scopes, :connected_at, :updated_at)`, in)
}

func (p *SQLProvider) UpdateIntegration(ctx context.Context, in *OAuthIntegration) error {
	return p.execOne(ctx, `UPDATE oauth_integrations SET refresh_token_encrypted = ?, scopes = ?, connected_at = ?, updated_at = ?
		WHERE user_id = ? AND provider = ?`,
		in.RefreshTokenEncrypted, in.Scopes, in.ConnectedAt.UTC(), in.UpdatedAt.UTC(), in.UserID, in.Provider)
}

// DeleteIntegration removes the row if present; a missing row is not an error.
func (p *SQLProvider) DeleteIntegration(ctx context.Context, userID string, provider string) error {
	_, err := p.db.ExecContext(ctx, p.db.Rebind(`DELETE FROM oauth_integrations WHERE user_id = ? AND provider = ?`), userID, provider)
	return err
}
