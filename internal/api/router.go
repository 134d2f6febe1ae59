package api

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/rohits-web03/notevault/docs"
	"github.com/rohits-web03/notevault/internal/api/handlers"
	"github.com/rohits-web03/notevault/internal/api/middleware"
	"github.com/rohits-web03/notevault/internal/config"
)

func SetupRouter(h *handlers.Handler, auth middleware.Authenticator, cfg config.Config, log *zap.Logger) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("GET /docs/", httpSwagger.WrapHandler)

	mainMux.HandleFunc("GET /{$}", h.Home)
	mainMux.HandleFunc("GET /register", h.RegisterForm)
	mainMux.HandleFunc("POST /register", h.Register)
	mainMux.HandleFunc("GET /login", h.LoginForm)
	mainMux.HandleFunc("POST /login", h.Login)
	mainMux.HandleFunc("GET /logout", h.Logout)
	mainMux.HandleFunc("POST /logout", h.Logout)

	if h.GoogleEnabled() {
		mainMux.HandleFunc("GET /auth/google/login", h.GoogleLogin)
		mainMux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)
	}

	// ---------- PROTECTED PAGES ----------
	page := func(pattern string, fn http.HandlerFunc) {
		mainMux.Handle(pattern, middleware.RequireUser(fn))
	}
	page("GET /notes", h.ListNotes)
	page("GET /notes/new", h.NewNoteForm)
	page("POST /notes/new", h.CreateNote)
	page("GET /notes/{id}/edit", h.EditNoteForm)
	page("POST /notes/{id}/edit", h.UpdateNote)
	page("GET /notes/{id}/delete", h.DeleteNoteForm)
	page("POST /notes/{id}/delete", h.DeleteNote)
	page("POST /notes/{id}/attachment", h.UploadAttachment)
	page("GET /profile", h.ProfileForm)
	page("POST /profile", h.UpdateProfile)
	page("POST /profile/password", h.ChangePassword)
	page("POST /delete_account", h.DeleteAccount)

	// ---------- PROTECTED API ----------
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /user", h.APIUser)
	apiMux.HandleFunc("GET /notes", h.APIListNotes)
	apiMux.HandleFunc("GET /notes/{id}", h.APIGetNote)

	mainMux.Handle("/api/",
		http.StripPrefix(
			"/api",
			middleware.RequireAPIUser(apiMux),
		),
	)

	mainMux.HandleFunc("/", h.NotFound)

	log.Debug("router initialized", zap.Bool("google_sign_in", h.GoogleEnabled()))
	handler := middleware.Sessions(auth, log)(mainMux)
	handler = c.Handler(handler)
	handler = middleware.Logger(log)(handler)
	return handler
}
