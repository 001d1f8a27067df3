package domain

import "time"

// TaskStatus values are stored verbatim in tasks.status.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// MaxTaskTitleLength matches the VARCHAR(255) column.
const MaxTaskTitleLength = 255

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      TaskStatus `db:"status" json:"status"`
	DueDate     *time.Time `db:"due_date" json:"due_date"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskInput carries the fields accepted on creation. An empty Status means Pending.
type TaskInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskPatch is a partial update; only fields with Set == true are written.
type TaskPatch struct {
	Title       Field[string]     `json:"title"`
	Description Field[*string]    `json:"description"`
	Status      Field[TaskStatus] `json:"status"`
	DueDate     Field[*time.Time] `json:"due_date"`
}

// Empty reports whether no field was supplied.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.DueDate.Set
}

// TaskFilter selects a page of a user's tasks.
type TaskFilter struct {
	Status *TaskStatus
	Skip   int
	Limit  int
}
