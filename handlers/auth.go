package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"liist/common"
	"liist/models"

	"github.com/umakantv/go-utils/httpserver"
	"go.uber.org/zap"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "session_id"

type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// CookieConfig controls the session cookie. MaxAge should equal the session
// idle timeout so that browser and server forget the session together.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler serves registration, login and logout, and guards the pages
// that need a signed-in user.
type AuthHandler struct {
	auth   Authenticator
	pages  *Pages
	cookie CookieConfig
}

func NewAuthHandler(auth Authenticator, pages *Pages, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, pages: pages, cookie: cookie}
}

func loginForm(email string) AuthForm {
	return AuthForm{Action: "/login", Button: "Login", Email: email}
}

func registerForm(email, username string) AuthForm {
	return AuthForm{Action: "/register", Button: "Create account", Register: true, Email: email, Username: username}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.pages.Render(ctx, w, r, http.StatusOK, "auth", &PageData{Title: "Login", Form: loginForm("")})
}

// Login handles POST /login. Success sets the session cookie and sends the
// user to their list; any failure re-renders the form with a message.
func (h *AuthHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Login request")

	var req models.LoginRequest
	err := decodeForm(r, &req)
	if err == nil {
		var token string
		token, err = h.auth.Login(ctx, req)
		if err == nil {
			h.setSessionCookie(w, token)
			logRequest(ctx, "info", "Login successful", zap.String("email", req.Email))
			redirect(w, r, "/")
			return
		}
	}

	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logRequest(ctx, "error", "Login failed", zap.Error(err))
	} else {
		logRequest(ctx, "info", "Login rejected", zap.String("email", req.Email), zap.String("reason", appErr.Message))
	}

	h.pages.Render(ctx, w, r, http.StatusOK, "auth", &PageData{
		Title:   "Login",
		Form:    loginForm(req.Email),
		Flashes: []Flash{{Category: flashCategory(appErr), Message: appErr.Message}},
	})
}

// ShowRegister handles GET /register
func (h *AuthHandler) ShowRegister(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.pages.Render(ctx, w, r, http.StatusOK, "auth", &PageData{Title: "Register For Liist!", Form: registerForm("", "")})
}

// Register handles POST /register. A new account is not logged in; the user
// is sent to the login page with a success message.
func (h *AuthHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Register request")

	var req models.RegisterRequest
	err := decodeForm(r, &req)
	if err == nil {
		var user *models.User
		user, err = h.auth.Register(ctx, req)
		if err == nil {
			logRequest(ctx, "info", "Account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
			h.pages.Flash(ctx, w, r, "success", msgAccountCreated)
			redirect(w, r, "/login")
			return
		}
	}

	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logRequest(ctx, "error", "Registration failed", zap.Error(err))
	} else {
		logRequest(ctx, "info", "Registration rejected", zap.String("reason", appErr.Message))
	}

	h.pages.Render(ctx, w, r, http.StatusOK, "auth", &PageData{
		Title:   "Register For Liist!",
		Form:    registerForm(req.Email, req.Username),
		Flashes: []Flash{{Category: flashCategory(appErr), Message: appErr.Message}},
	})
}

// Logout handles GET /logout; it runs behind RequireSession.
func (h *AuthHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		if err := h.auth.Logout(ctx, cookie.Value); err != nil {
			h.pages.RenderError(ctx, w, r, err)
			return
		}
	}
	h.clearSessionCookie(w)
	logRequest(ctx, "info", "Logged out")
	redirect(w, r, "/login")
}

// RequireSession resolves the session cookie before calling next. Requests
// without a live session are redirected to the login page.
func (h *AuthHandler) RequireSession(next httpserver.HandlerFunc) httpserver.HandlerFunc {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.redirectToLogin(ctx, w, r)
			return
		}

		user, err := h.auth.Authenticate(ctx, cookie.Value)
		if errors.Is(err, common.ErrUnauthenticated) {
			h.clearSessionCookie(w)
			h.redirectToLogin(ctx, w, r)
			return
		}
		if err != nil {
			h.pages.RenderError(ctx, w, r, err)
			return
		}

		// the server-side window slid in Authenticate; keep the cookie in step
		h.setSessionCookie(w, cookie.Value)
		next(withUser(ctx, user), w, r)
	}
}

func (h *AuthHandler) redirectToLogin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "debug", "No session, redirecting to login")
	h.pages.Flash(ctx, w, r, "info", msgLoginRequired)
	redirect(w, r, "/login")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.cookie.MaxAge / time.Second),
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
