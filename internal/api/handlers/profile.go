package handlers

import (
	"net/http"

	"github.com/rohits-web03/notevault/internal/api/flash"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/views"
)

func profilePage(username, email string) views.ViewData {
	return views.ViewData{
		Title:           "Profile",
		ContentTemplate: "profile",
		Form:            map[string]string{"username": username, "email": email},
	}
}

// GET /profile
func (h *Handler) ProfileForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.User(r.Context(), principal(r).UserID)
	if err != nil {
		h.failPage(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, profilePage(user.Username, user.Email))
}

// POST /profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := services.ProfileInput{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
	}

	if _, err := h.auth.UpdateProfile(r.Context(), principal(r).UserID, input); err != nil {
		h.failForm(w, r, err, profilePage(input.Username, input.Email))
		return
	}

	flash.Add(w, r, flash.Success, "Your profile has been updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// POST /profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	input := services.ChangePasswordInput{
		CurrentPassword: r.PostForm.Get("current_password"),
		NewPassword:     r.PostForm.Get("new_password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	p := principal(r)

	if err := h.auth.ChangePassword(r.Context(), p.UserID, input); err != nil {
		h.failForm(w, r, err, profilePage(p.Username, p.Email))
		return
	}

	flash.Add(w, r, flash.Success, "Your password has been changed.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// POST /delete_account
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteAccount(r.Context(), principal(r).UserID); err != nil {
		h.failPage(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	flash.Add(w, r, flash.Info, "Your account has been deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
