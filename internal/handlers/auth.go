package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tareas-web/appserver/internal/services"
	"github.com/tareas-web/appserver/internal/session"
	"github.com/tareas-web/appserver/internal/web"
)

// AuthHandler serves the login, register and logout pages.
type AuthHandler struct {
	accounts *services.AccountService
	sessions *session.Manager
	views    *web.Views
}

func NewAuthHandler(accounts *services.AccountService, sessions *session.Manager, views *web.Views) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, views: views}
}

// AuthRouter registers the unauthenticated routes.
func AuthRouter(r chi.Router, accounts *services.AccountService, sessions *session.Manager, views *web.Views) {
	handler := NewAuthHandler(accounts, sessions, views)

	r.Get("/login", handler.LoginPage)
	r.Post("/login", handler.Login)
	r.Get("/register", handler.RegisterPage)
	r.Post("/register", handler.Register)
	r.Get("/logout", handler.Logout)
}

type authPageData struct {
	Flashes []session.Flash
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := ensureSession(w, r, h.sessions)
	renderPage(w, h.views, "login.html", authPageData{Flashes: h.sessions.PopFlashes(sess.Token)})
}

// Login authenticates the posted credentials and establishes the
// session identity. Failures re-render the form with a uniform notice.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := ensureSession(w, r, h.sessions)

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(sess.Token, session.FlashError, "Solicitud inválida")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		h.sessions.AddFlash(sess.Token, session.FlashError, "Usuario o contraseña incorrectos")
		renderPage(w, h.views, "login.html", authPageData{Flashes: h.sessions.PopFlashes(sess.Token)})
		return
	}

	token := h.sessions.SetIdentity(sess.Token, account.ID, account.Username)
	setSessionCookie(w, token)
	h.sessions.AddFlash(token, session.FlashSuccess, "Inicio de sesión exitoso")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := ensureSession(w, r, h.sessions)
	renderPage(w, h.views, "register.html", authPageData{Flashes: h.sessions.PopFlashes(sess.Token)})
}

// Register creates the account and sends the user to the login page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sess := ensureSession(w, r, h.sessions)

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(sess.Token, session.FlashError, "Solicitud inválida")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	_, err := h.accounts.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case err == nil:
		h.sessions.AddFlash(sess.Token, session.FlashSuccess, "Usuario registrado exitosamente. Ahora puedes iniciar sesión.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, services.ErrAlreadyExists):
		h.sessions.AddFlash(sess.Token, session.FlashError, "El usuario ya existe")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	default:
		var validation *services.ValidationError
		if errors.As(err, &validation) {
			h.sessions.AddFlash(sess.Token, session.FlashError, "Usuario y contraseña son obligatorios")
		} else {
			h.sessions.AddFlash(sess.Token, session.FlashError, "Error al registrar el usuario")
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	}
}

// Logout clears the whole session unconditionally, then starts a fresh
// anonymous one so the goodbye notice survives the redirect.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Clear(cookie.Value)
	}

	fresh := h.sessions.Start()
	setSessionCookie(w, fresh.Token)
	h.sessions.AddFlash(fresh.Token, session.FlashSuccess, "Sesión cerrada exitosamente")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
