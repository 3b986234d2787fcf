package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tareas-web/appserver/internal/services"
	"github.com/tareas-web/appserver/internal/session"
	"github.com/tareas-web/appserver/internal/web"
	"github.com/tareas-web/appserver/types"
)

const (
	formFieldTitle       = "titulo"
	formFieldDescription = "descripcion"
	formFieldDueDate     = "fecha_limite"
	formFieldCategory    = "categoria"

	queryParamSearch = "q"
	queryParamOrder  = "orden"
)

// TaskHandler serves the task list and the task mutations. Every
// route here sits behind RequireAuth.
type TaskHandler struct {
	tasks    *services.TaskService
	sessions *session.Manager
	views    *web.Views
}

func NewTaskHandler(tasks *services.TaskService, sessions *session.Manager, views *web.Views) *TaskHandler {
	return &TaskHandler{tasks: tasks, sessions: sessions, views: views}
}

// TaskRouter registers the authenticated task routes.
func TaskRouter(r chi.Router, tasks *services.TaskService, sessions *session.Manager, views *web.Views) {
	handler := NewTaskHandler(tasks, sessions, views)

	r.Get("/", handler.Index)
	r.Post("/crear", handler.Create)
	r.Route("/editar/{tareaID}", func(r chi.Router) {
		r.Get("/", handler.EditPage)
		r.Post("/", handler.Edit)
	})
	r.Post("/toggle/{tareaID}", handler.Toggle)
	r.Post("/eliminar/{tareaID}", handler.Delete)
}

type indexPageData struct {
	Username string
	Tasks    []types.Task
	Q        string
	Orden    string
	Hoy      time.Time
	Flashes  []session.Flash
}

// Index renders the task list. A store failure degrades to an empty
// list plus an error notice instead of a hard failure.
func (h *TaskHandler) Index(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	q := r.URL.Query().Get(queryParamSearch)
	orden := r.URL.Query().Get(queryParamOrder)
	if orden == "" {
		orden = "recientes"
	}

	tasks, err := h.tasks.List(r.Context(), identity.AccountID, q, orden)
	if err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error en la base de datos")
		tasks = []types.Task{}
	}

	renderPage(w, h.views, "index.html", indexPageData{
		Username: identity.Username,
		Tasks:    tasks,
		Q:        q,
		Orden:    orden,
		Hoy:      time.Now(),
		Flashes:  h.sessions.PopFlashes(identity.Token),
	})
}

// Create adds a task from the submitted form and redirects home.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error al crear la tarea: solicitud inválida")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	_, err = h.tasks.Create(r.Context(), identity.AccountID, services.TaskInput{
		Title:       r.PostFormValue(formFieldTitle),
		Description: r.PostFormValue(formFieldDescription),
		DueDate:     r.PostFormValue(formFieldDueDate),
		Category:    r.PostFormValue(formFieldCategory),
	})
	if err != nil {
		var validation *services.ValidationError
		if errors.As(err, &validation) {
			h.sessions.AddFlash(identity.Token, session.FlashError,
				fmt.Sprintf("Error al crear la tarea: campo %s inválido", validation.Field))
		} else {
			h.sessions.AddFlash(identity.Token, session.FlashError, "Error al crear la tarea")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.sessions.AddFlash(identity.Token, session.FlashSuccess, "Tarea creada exitosamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type editPageData struct {
	Task    types.Task
	Flashes []session.Flash
}

// EditPage renders the edit form for an owned task. Foreign or missing
// tasks bounce back home with a notice; existence is not disclosed to
// non-owners.
func (h *TaskHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error al editar la tarea")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	task, err := h.tasks.Get(r.Context(), taskID, identity.AccountID)
	if err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, editErrorNotice(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	renderPage(w, h.views, "editar.html", editPageData{
		Task:    task,
		Flashes: h.sessions.PopFlashes(identity.Token),
	})
}

// Edit applies the posted changes to an owned task.
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error al editar la tarea")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error al editar la tarea")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	_, err = h.tasks.Edit(r.Context(), taskID, identity.AccountID, services.TaskInput{
		Title:       r.PostFormValue(formFieldTitle),
		Description: r.PostFormValue(formFieldDescription),
		DueDate:     r.PostFormValue(formFieldDueDate),
		Category:    r.PostFormValue(formFieldCategory),
	})
	if err != nil {
		h.sessions.AddFlash(identity.Token, session.FlashError, editErrorNotice(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.sessions.AddFlash(identity.Token, session.FlashSuccess, "Tarea actualizada exitosamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Toggle flips the completed flag of an owned task.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	taskID, err := parseTaskID(r)
	if err == nil {
		_, err = h.tasks.Toggle(r.Context(), taskID, identity.AccountID)
	}
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			h.sessions.AddFlash(identity.Token, session.FlashError, "No tienes permisos para modificar esta tarea")
		} else {
			h.sessions.AddFlash(identity.Token, session.FlashError, "Error al modificar la tarea")
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete permanently removes an owned task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	taskID, err := parseTaskID(r)
	if err == nil {
		err = h.tasks.Delete(r.Context(), taskID, identity.AccountID)
	}
	switch {
	case err == nil:
		h.sessions.AddFlash(identity.Token, session.FlashSuccess, "Tarea eliminada exitosamente")
	case errors.Is(err, services.ErrForbidden):
		h.sessions.AddFlash(identity.Token, session.FlashError, "No tienes permisos para eliminar esta tarea")
	default:
		h.sessions.AddFlash(identity.Token, session.FlashError, "Error al eliminar la tarea")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func editErrorNotice(err error) string {
	if errors.Is(err, services.ErrForbidden) {
		return "No tienes permisos para editar esta tarea"
	}
	return "Error al editar la tarea"
}

func parseTaskID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "tareaID"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id")
	}
	return id, nil
}
