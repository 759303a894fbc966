package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/gorilla/handlers"

	"babelroom/internal/config"
	"babelroom/internal/database"
	"babelroom/internal/feed"
	"babelroom/internal/stats"
	"babelroom/internal/transcription"
	"babelroom/internal/translation"
)

// App is the HTTP and websocket gateway. Each websocket connection gets
// its own room store; the REST surface serves the static language catalog
// and speech-to-text.
type App struct {
	log         *log.Logger
	repo        database.ChatRepository
	feed        feed.Feed
	translator  translation.Translator
	transcriber transcription.Transcriber
	stats       stats.Provider
	mux         *http.Server

	allowedOrigins []string
}

func NewApp(mux *http.ServeMux, logger *log.Logger, repo database.ChatRepository, f feed.Feed,
	translator translation.Translator, transcriber transcription.Transcriber,
	sp stats.Provider, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		repo:           repo,
		feed:           f,
		translator:     translator,
		transcriber:    transcriber,
		stats:          sp,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /api/languages", s.getLanguages)
	mux.HandleFunc("POST /api/transcribe", s.transcribe)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *App) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.allowedOrigins, "*") {
		return true
	}
	return slices.Contains(s.allowedOrigins, origin)
}

func (s *App) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Printf("panic: %v", panicError)
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}
