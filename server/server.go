// Package server exposes the assistant over HTTP with JSON bodies.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/assistant"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Assistant is the set of use cases served over HTTP, implemented by
// *assistant.Service.
type Assistant interface {
	Verify(ctx context.Context, accountNumber string) (finassist.Customer, error)
	Ask(ctx context.Context, accountNumber, query string) (string, error)
	Transactions(ctx context.Context, accountNumber, from, to string) ([]finassist.Transaction, error)
	Summary(ctx context.Context, accountNumber string) (finassist.Summary, error)
	EmailStatement(ctx context.Context, accountNumber string) (assistant.Delivery, error)
}

var _ Assistant = (*assistant.Service)(nil)

// request is the body of every POST route, each route reads the fields it
// needs.
type request struct {
	AccountNumber string `json:"accountNumber"`
	Query         string `json:"query"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

type handler struct {
	a   Assistant
	log *zap.Logger
}

// New returns the HTTP handler of the API.
func New(a Assistant, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{a: a, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/api", func(api chi.Router) {
		api.Post("/login", h.login)
		api.Post("/ask", h.ask)
		api.Post("/transactions", h.transactions)
		api.Post("/summary", h.summary)
		api.Post("/email-statement", h.emailStatement)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "OK",
		"message": "Financial Assistant API is running",
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	c, err := h.a.Verify(r.Context(), req.AccountNumber)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "customer": c})
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	answer, err := h.a.Ask(r.Context(), req.AccountNumber, req.Query)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": answer})
}

func (h *handler) transactions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	txs, err := h.a.Transactions(r.Context(), req.AccountNumber, req.StartDate, req.EndDate)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "transactions": txs})
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	s, err := h.a.Summary(r.Context(), req.AccountNumber)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": s})
}

func (h *handler) emailStatement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	d, err := h.a.EmailStatement(r.Context(), req.AccountNumber)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": d.Message})
}

// decode reads the request body, on failure it writes the error response.
func (h *handler) decode(w http.ResponseWriter, r *http.Request) (request, bool) {
	var req request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.log.Debug("invalid body", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body", Kind: finassist.InvalidInput.String()})
		return request{}, false
	}
	return req, true
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Status returns the HTTP status of an error returned by the assistant.
func Status(err error) int {
	switch finassist.KindOf(err) {
	case finassist.InvalidInput:
		return http.StatusBadRequest
	case finassist.NotFound:
		return http.StatusNotFound
	case finassist.UpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	kind := finassist.KindOf(err)
	msg := finassist.Message(err)
	if kind == 0 {
		// Not one of ours, do not leak it.
		h.log.Error("unexpected error", zap.Error(err))
		msg = "Internal error"
	}
	h.writeJSON(w, Status(err), errorBody{Error: msg, Kind: kind.String()})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are sent, the client only sees a truncated body.
		h.log.Debug("cannot write response", zap.Int("status", status), zap.Error(err))
	}
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Info("request",
					zap.String("id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
