package types

import "time"

// Task represents a single to-do item owned by exactly one Account.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is the short human-readable name of the task.
	Title string `json:"title" db:"title"`

	// Description is optional free-form text.
	Description string `json:"description" db:"description"`

	// Completed marks whether the task is done.
	Completed bool `json:"completed" db:"completed"`

	// CreatedAt is assigned by the server at creation time and drives
	// the "recientes"/"antiguas" orderings.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// DueDate is an optional calendar date with no time component.
	DueDate *time.Time `json:"due_date" db:"due_date"`

	// Category is a free label ("work", "personal", ...).
	Category string `json:"category" db:"category"`

	// AccountID is the owning account. Ownership is immutable after
	// creation and gates every read and mutation of the task.
	AccountID int `json:"account_id" db:"account_id"`
}

// Overdue reports whether the task has a due date strictly before the
// given day and is still pending.
func (t Task) Overdue(today time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := t.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return due.Before(day)
}

// DueDateValue renders the due date in the YYYY-MM-DD form used by
// date inputs, or "" when unset.
func (t Task) DueDateValue() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format("2006-01-02")
}
