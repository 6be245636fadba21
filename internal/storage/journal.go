package storage

import (
	"context"
	"time"
)

const journalColumns = `id, user_id, description, day, created_at, updated_at, deleted_at`

func (p *SQLProvider) ListJournalEntries(ctx context.Context, userID string, day string) ([]JournalEntry, error) {
	entries := []JournalEntry{}
	err := p.db.SelectContext(ctx, &entries, p.db.Rebind(`SELECT `+journalColumns+` FROM journal_entries
		WHERE user_id = ? AND day = ? AND deleted_at IS NULL ORDER BY created_at DESC`), userID, day)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *SQLProvider) CreateJournalEntry(ctx context.Context, entry *JournalEntry) error {
	return p.insert(ctx, `INSERT INTO journal_entries (`+journalColumns+`)
		VALUES (:id, :user_id, :description, :day, :created_at, :updated_at, :deleted_at)`, entry)
}

// DeleteJournalEntry soft deletes an entry and reports whether a live entry
// was found.
func (p *SQLProvider) DeleteJournalEntry(ctx context.Context, id string, userID string, at time.Time) (bool, error) {
	res, err := p.db.ExecContext(ctx, p.db.Rebind(`UPDATE journal_entries SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`), at.UTC(), at.UTC(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
