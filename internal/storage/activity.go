package storage

import (
	"context"
	"time"
)

const activityColumns = `id, user_id, action_type, entity_type, entity_id, entity_title, metadata, created_at`

func (p *SQLProvider) CreateActivityLog(ctx context.Context, entry *ActivityLog) error {
	return p.insert(ctx, `INSERT INTO activity_logs (`+activityColumns+`)
		VALUES (:id, :user_id, :action_type, :entity_type, :entity_id, :entity_title, :metadata, :created_at)`, entry)
}

// ListActivityLogs returns entries created in [from, to), newest first.
func (p *SQLProvider) ListActivityLogs(ctx context.Context, userID string, from, to time.Time) ([]ActivityLog, error) {
	logs := []ActivityLog{}
	err := p.db.SelectContext(ctx, &logs, p.db.Rebind(`SELECT `+activityColumns+` FROM activity_logs
		WHERE user_id = ? AND created_at >= ? AND created_at < ? ORDER BY created_at DESC`), userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return logs, nil
}
