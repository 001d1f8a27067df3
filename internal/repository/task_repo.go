package repository

import (
	"context"
	"strconv"
	"strings"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, user_id, title, description, status, due_date, created_at, updated_at`

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns a page of userID's tasks: earliest due date first with undated
// tasks last, then newest first.
func (r *TaskRepository) List(ctx context.Context, userID int64, f domain.TaskFilter) ([]*domain.Task, error) {
	query, args := buildTaskList(userID, f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return translate(r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, status, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Title, t.Description, string(t.Status), t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

// GetByID returns ErrNotFound when the task is missing or owned by another user.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// Update writes the fields present in p and refreshes updated_at.
func (r *TaskRepository) Update(ctx context.Context, userID, id int64, p domain.TaskPatch) (*domain.Task, error) {
	query, args := buildTaskUpdate(userID, id, p)
	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// Delete removes the task and returns the row as it was.
func (r *TaskRepository) Delete(ctx context.Context, userID, id int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING `+taskColumns, id, userID))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func buildTaskList(userID int64, f domain.TaskFilter) (string, []any) {
	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		sb.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY due_date ASC NULLS LAST, created_at DESC, id DESC`)

	args = append(args, f.Skip)
	sb.WriteString(` OFFSET $` + strconv.Itoa(len(args)))
	args = append(args, f.Limit)
	sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))

	return sb.String(), args
}

func buildTaskUpdate(userID, id int64, p domain.TaskPatch) (string, []any) {
	var sets []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if p.Title.Set {
		add("title", p.Title.Value)
	}
	if p.Description.Set {
		add("description", p.Description.Value)
	}
	if p.Status.Set {
		add("status", string(p.Status.Value))
	}
	if p.DueDate.Set {
		add("due_date", p.DueDate.Value)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, userID)
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)-1) +
		` AND user_id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + taskColumns
	return query, args
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var status string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&status,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
