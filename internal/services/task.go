package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tareas-web/appserver/internal/store"
	"github.com/tareas-web/appserver/types"
)

// DefaultCategory is applied when an edit omits the category field.
// Creation has no default: the field is required there.
const DefaultCategory = "work"

// DateLayout is the only accepted due-date form.
const DateLayout = "2006-01-02"

// TaskInput carries the raw form values of a create or edit request.
// Validation and parsing happen inside the service.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
	Category    string
}

// TaskService owns the task query pipeline and all task mutations.
// Every mutation is transactional and ownership-checked before any
// field is touched.
type TaskService struct {
	db *sql.DB
}

func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// List returns the caller's tasks, optionally filtered by a
// case-insensitive substring search over title and description, in the
// order selected by orderKey ("recientes", "antiguas", "titulo";
// anything else behaves like "recientes"). Store failures surface as
// ErrStoreUnavailable so the caller can degrade to an empty view.
func (s *TaskService) List(ctx context.Context, ownerID int, search, orderKey string) ([]types.Task, error) {
	tasks, err := store.NewTaskRepository(s.db).List(ctx, ownerID, strings.TrimSpace(search), orderKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tasks, nil
}

// Get loads a single task after checking ownership. Used by the edit
// form; the same NotFound/Forbidden split as the mutations applies.
func (s *TaskService) Get(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	task, err := store.NewTaskRepository(s.db).Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if task.AccountID != ownerID {
		return types.Task{}, ErrForbidden
	}
	return task, nil
}

// Create validates the input and inserts a task owned by ownerID.
// Title, due date and category are all required here.
func (s *TaskService) Create(ctx context.Context, ownerID int, in TaskInput) (types.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Task{}, invalidField("titulo")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return types.Task{}, invalidField("fecha_limite")
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(in.DueDate))
	if err != nil {
		return types.Task{}, invalidField("fecha_limite")
	}
	if strings.TrimSpace(in.Category) == "" {
		return types.Task{}, invalidField("categoria")
	}

	var task types.Task
	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		created, err := store.NewTaskRepository(tx).Create(ctx, types.Task{
			Title:       title,
			Description: in.Description,
			DueDate:     &due,
			Category:    strings.TrimSpace(in.Category),
			AccountID:   ownerID,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		task = created
		return nil
	})
	if err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Edit rewrites title, description, due date and category of an owned
// task. A missing category falls back to DefaultCategory, unlike
// Create, which requires it; that asymmetry is intentional and
// load-bearing for existing clients.
func (s *TaskService) Edit(ctx context.Context, taskID, ownerID int, in TaskInput) (types.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Task{}, invalidField("titulo")
	}

	var due *time.Time
	if v := strings.TrimSpace(in.DueDate); v != "" {
		parsed, err := time.Parse(DateLayout, v)
		if err != nil {
			return types.Task{}, invalidField("fecha_limite")
		}
		due = &parsed
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	var task types.Task
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		repo := store.NewTaskRepository(tx)

		current, err := s.authorize(ctx, repo, taskID, ownerID)
		if err != nil {
			return err
		}

		current.Title = title
		current.Description = in.Description
		if due != nil {
			current.DueDate = due
		}
		current.Category = category

		updated, err := repo.Update(ctx, current)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		task = updated
		return nil
	})
	if err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Toggle flips the completed flag and changes nothing else.
func (s *TaskService) Toggle(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	var task types.Task
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		repo := store.NewTaskRepository(tx)

		current, err := s.authorize(ctx, repo, taskID, ownerID)
		if err != nil {
			return err
		}

		current.Completed = !current.Completed
		updated, err := repo.Update(ctx, current)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		task = updated
		return nil
	})
	if err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Delete permanently removes an owned task.
func (s *TaskService) Delete(ctx context.Context, taskID, ownerID int) error {
	return store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		repo := store.NewTaskRepository(tx)

		if _, err := s.authorize(ctx, repo, taskID, ownerID); err != nil {
			return err
		}

		if err := repo.Delete(ctx, taskID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
}

// authorize loads the task and enforces the ownership check before any
// mutation. An unauthorized caller observes no side effects.
func (s *TaskService) authorize(ctx context.Context, repo *store.TaskRepository, taskID, ownerID int) (types.Task, error) {
	task, err := repo.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if task.AccountID != ownerID {
		return types.Task{}, ErrForbidden
	}
	return task, nil
}
