package storage

import (
	"context"
	"time"
)

const todoColumns = `id, user_id, title, description, completed, due_date, link_url, link_type, created_at, updated_at, deleted_at`

// ListTodosDue returns live todos with from <= due_date < to.
func (p *SQLProvider) ListTodosDue(ctx context.Context, userID string, from, to time.Time, incompleteOnly bool) ([]Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos
		WHERE user_id = ? AND deleted_at IS NULL AND due_date >= ? AND due_date < ?`
	if incompleteOnly {
		query += ` AND completed = ?`
	}
	query += ` ORDER BY due_date ASC, created_at ASC`

	args := []any{userID, from.UTC(), to.UTC()}
	if incompleteOnly {
		args = append(args, false)
	}

	todos := []Todo{}
	if err := p.db.SelectContext(ctx, &todos, p.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return todos, nil
}

func (p *SQLProvider) GetTodo(ctx context.Context, id string, userID string) (*Todo, error) {
	var todo Todo
	err := p.getOne(ctx, &todo, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (p *SQLProvider) CreateTodo(ctx context.Context, todo *Todo) error {
	return p.insert(ctx, `INSERT INTO todos (`+todoColumns+`)
		VALUES (:id, :user_id, :title, :description, :completed, :due_date, :link_url, :link_type, :created_at, :updated_at, :deleted_at)`, todo)
}

func (p *SQLProvider) UpdateTodo(ctx context.Context, todo *Todo) error {
	return p.execOne(ctx, `UPDATE todos SET title = ?, description = ?, completed = ?, due_date = ?, link_url = ?, link_type = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		todo.Title, todo.Description, todo.Completed, todo.DueDate.UTC(), todo.LinkURL, todo.LinkType, todo.UpdatedAt.UTC(),
		todo.ID, todo.UserID)
}
