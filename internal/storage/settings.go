package storage

import "context"

const settingsColumns = `id, user_id, preferred_check_in_time, preferred_check_out_time, created_at, updated_at`

func (p *SQLProvider) GetUserSettings(ctx context.Context, userID string) (*UserSettings, error) {
	var s UserSettings
	if err := p.getOne(ctx, &s, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *SQLProvider) CreateUserSettings(ctx context.Context, s *UserSettings) error {
	return p.insert(ctx, `INSERT INTO user_settings (`+settingsColumns+`)
		VALUES (:id, :user_id, :preferred_check_in_time, :preferred_check_out_time, :created_at, :updated_at)`, s)
}

func (p *SQLProvider) UpdateUserSettings(ctx context.Context, s *UserSettings) error {
	return p.execOne(ctx, `UPDATE user_settings SET preferred_check_in_time = ?, preferred_check_out_time = ?, updated_at = ?
		WHERE user_id = ?`, s.PreferredCheckInTime, s.PreferredCheckOutTime, s.UpdatedAt.UTC(), s.UserID)
}
