package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/usecase"
)

type Handler struct {
	UC *usecase.Service
}

func New(uc *usecase.Service) *Handler { return &Handler{UC: uc} }

func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", h.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.handleList).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.handleExit).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/commands", h.handleCommand).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/hint", h.handleHint).Methods(http.MethodGet)
	api.HandleFunc("/wallet", h.handleWallet).Methods(http.MethodGet)
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ports.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResp{Error: err.Error()})
}

// decode reads a JSON body; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ---- Start ----

type startReq struct {
	Mode string `json:"mode,omitempty"`
	Seed uint64 `json:"seed,omitempty"`
}

type startResp struct {
	ID       string          `json:"id"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	id, snap, err := h.UC.Start(r.Context(), mode, req.Seed)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResp{ID: id, Snapshot: snap})
}

// ---- List / Get ----

type listResp struct {
	Items []domain.SessionMeta `json:"items"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.UC.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if items == nil {
		items = []domain.SessionMeta{}
	}
	writeJSON(w, http.StatusOK, listResp{Items: items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.UC.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ---- Commands ----

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd domain.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	res, err := h.UC.Apply(r.Context(), mux.Vars(r)["id"], cmd)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---- Hint ----

type hintResp struct {
	Found bool         `json:"found"`
	Hint  *domain.Hint `json:"hint,omitempty"`
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	hint, ok, err := h.UC.Hint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := hintResp{Found: ok}
	if ok {
		resp.Hint = &hint
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- Exit / Wallet ----

type exitResp struct {
	Payout  int `json:"payout"`
	Balance int `json:"balance"`
}

func (h *Handler) handleExit(w http.ResponseWriter, r *http.Request) {
	payout, bal, err := h.UC.Exit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exitResp{Payout: payout, Balance: bal})
}

type walletResp struct {
	Balance int `json:"balance"`
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	bal, err := h.UC.Balance(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, walletResp{Balance: bal})
}
