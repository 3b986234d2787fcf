package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tareas-web/appserver/types"
)

// Order keys recognized by List. Anything else falls back to
// OrderRecent.
const (
	OrderRecent = "recientes"
	OrderOldest = "antiguas"
	OrderTitle  = "titulo"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the full materialized set of tasks owned by ownerID.
// A non-empty search keeps a task iff it is a case-insensitive
// substring of the title or the description.
func (r *TaskRepository) List(ctx context.Context, ownerID int, search, orderKey string) ([]types.Task, error) {
	query := `
		SELECT id, title, description, completed, created_at, due_date, category, account_id
		FROM tasks
		WHERE account_id = $1`
	args := []any{ownerID}

	if search != "" {
		query += `
		AND (LOWER(title) LIKE $2 OR LOWER(description) LIKE $2)`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	switch orderKey {
	case OrderOldest:
		query += `
		ORDER BY created_at ASC, id ASC`
	case OrderTitle:
		query += `
		ORDER BY title ASC, id ASC`
	default:
		query += `
		ORDER BY created_at DESC, id DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (types.Task, error) {
	const query = `
		SELECT id, title, description, completed, created_at, due_date, category, account_id
		FROM tasks
		WHERE id = $1`
	var task types.Task
	var due sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&due,
		&task.Category,
		&task.AccountID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	if due.Valid {
		d := due.Time
		task.DueDate = &d
	}
	return task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO tasks (title, description, completed, created_at, due_date, category, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.CreatedAt,
		nullDate(task.DueDate),
		task.Category,
		task.AccountID,
	).Scan(&task.ID); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Update rewrites the mutable fields of a task. Ownership and creation
// time never change.
func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	const query = `
		UPDATE tasks
		SET title = $1,
			description = $2,
			completed = $3,
			due_date = $4,
			category = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		nullDate(task.DueDate),
		task.Category,
		task.ID,
	)
	if err != nil {
		return types.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Task{}, err
	}
	if affected == 0 {
		return types.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(rows *sql.Rows) (types.Task, error) {
	var task types.Task
	var due sql.NullTime
	if err := rows.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&due,
		&task.Category,
		&task.AccountID,
	); err != nil {
		return types.Task{}, err
	}
	if due.Valid {
		d := due.Time
		task.DueDate = &d
	}
	return task, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
