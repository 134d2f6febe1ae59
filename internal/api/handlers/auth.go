package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rohits-web03/notevault/internal/api/flash"
	"github.com/rohits-web03/notevault/internal/api/middleware"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/views"
)

// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.ViewData{ContentTemplate: "home"})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		Secure:   h.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func registerPage() views.ViewData {
	return views.ViewData{Title: "Register", ContentTemplate: "register"}
}

// GET /register
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if principal(r) != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, registerPage())
}

// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := services.RegisterInput{
		Username:        r.PostForm.Get("username"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}

	if _, err := h.auth.Register(r.Context(), input); err != nil {
		data := registerPage()
		data.Form = map[string]string{"username": input.Username, "email": input.Email}
		h.failForm(w, r, err, data)
		return
	}

	flash.Add(w, r, flash.Success, "Account created! You can now log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginPage(next string) views.ViewData {
	return views.ViewData{Title: "Log in", ContentTemplate: "login", Next: safeNext(next)}
}

// GET /login
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if principal(r) != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, loginPage(r.URL.Query().Get("next")))
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := services.LoginInput{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	next := r.PostForm.Get("next")

	sess, err := h.auth.Login(r.Context(), input)
	if err != nil {
		data := loginPage(next)
		data.Form = map[string]string{"email": input.Email}
		h.failForm(w, r, err, data)
		return
	}

	h.setSessionCookie(w, sess)
	if next = safeNext(next); next == "" {
		next = "/notes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// GET,POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.TokenCookie); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Warn("failed to end session", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	flash.Add(w, r, flash.Info, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /auth/google/login
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, st, err := newOAuthState(safeNext(r.URL.Query().Get("next")))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    st.Nonce,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		Secure:   h.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	st, err := decodeOAuthState(r.FormValue("state"))
	cookie, cookieErr := r.Cookie(oauthStateCookie)
	if err != nil || cookieErr != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(st.Nonce)) != 1 {
		h.renderError(w, r, http.StatusBadRequest, "Invalid OAuth state.")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/google", MaxAge: -1})

	if reason := r.FormValue("error"); reason != "" {
		flash.Add(w, r, flash.Danger, "Google sign-in was cancelled.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	profile, err := h.google.FetchProfile(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.Warn("google sign-in failed", zap.Error(err))
		flash.Add(w, r, flash.Danger, "Google sign-in failed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	sess, err := h.auth.SignInWithEmail(r.Context(), profile.Email, profile.Name)
	if err != nil {
		h.failPage(w, r, err)
		return
	}

	h.setSessionCookie(w, sess)
	next := st.Next
	if next == "" {
		next = "/notes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}
