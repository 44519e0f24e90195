package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/jobassist/internal/contract"
	"github.com/kalambet/jobassist/internal/render"
	"github.com/kalambet/jobassist/internal/shell"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "jobassist_session"

const maxFormSize = 64 << 10 // 64KB

type ctxKey struct{}

// Handler serves the search page. Searches submitted through the form run in
// the background; Wait and Shutdown block until they have all finished.
type Handler struct {
	sessions      *Sessions
	searchTimeout time.Duration
	logger        *slog.Logger
	router        chi.Router

	wg             sync.WaitGroup
	searches       context.Context
	cancelSearches context.CancelFunc
}

// NewHandler builds the router. searchTimeout bounds each background search.
func NewHandler(sessions *Sessions, searchTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		sessions:      sessions,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
	h.searches, h.cancelSearches = context.WithCancel(context.Background())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(h.withSession)
		r.Get("/", h.handlePage)
		r.Post("/search", h.handleSearch)
		r.Get("/state", h.handleState)
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Wait blocks until every background search has returned.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Shutdown waits for background searches. If ctx ends first the remaining
// searches are cancelled and waited for, and ctx's error is returned. Call it
// once the HTTP server has stopped accepting requests.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.cancelSearches()
		return nil
	case <-ctx.Done():
		h.cancelSearches()
		<-done
		return fmt.Errorf("waiting for searches: %w", ctx.Err())
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	sh := shellFrom(r.Context())

	var buf bytes.Buffer
	if err := render.Page(&buf, render.NewView(sh.Snapshot())); err != nil {
		h.logger.Error("rendering page", "error", err)
		httpError(w, http.StatusInternalServerError, "server_error", "could not render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid form: %v", err)
		return
	}

	sh := shellFrom(r.Context())
	ticket, err := sh.Begin(r.PostForm.Get("role"), r.PostForm.Get("location"))
	if err != nil {
		var verr *contract.ValidationError
		if !errors.As(err, &verr) {
			h.logger.Error("starting search", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, h.searchTimeout)
		defer cancel()
		stop := context.AfterFunc(h.searches, cancel)
		defer stop()
		if err := sh.Complete(ctx, ticket); errors.Is(err, shell.ErrSuperseded) {
			h.logger.Debug("search superseded", "seq", ticket.Seq)
		}
	}()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type stateResponse struct {
	Phase    string           `json:"phase"`
	Role     string           `json:"role"`
	Location string           `json:"location"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Result   *contract.Result `json:"result,omitempty"`
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	st := shellFrom(r.Context()).Snapshot()
	resp := stateResponse{
		Phase:    st.Phase.String(),
		Role:     st.Role,
		Location: st.Location,
		Loading:  st.Loading(),
		Error:    st.Err,
		Result:   st.Result,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(resp)
}

// withSession attaches the caller's shell to the request context, starting a
// new session when the cookie is missing or no longer known.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sh *shell.Shell
		if c, err := r.Cookie(SessionCookie); err == nil {
			sh, _ = h.sessions.Get(c.Value)
		}
		if sh == nil {
			var id string
			id, sh = h.sessions.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sh)))
	})
}

func shellFrom(ctx context.Context) *shell.Shell {
	return ctx.Value(ctxKey{}).(*shell.Shell)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
