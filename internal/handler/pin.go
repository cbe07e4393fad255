package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hearth/internal/store"
)

type PINHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewPINHandler(settings *store.SettingsStore, logger *slog.Logger) *PINHandler {
	return &PINHandler{settings: settings, logger: logger}
}

type pinRequest struct {
	PIN     string `json:"pin"`
	Current string `json:"current,omitempty"`
}

// Set configures or changes the panel PIN. Changing an existing PIN
// requires the current one.
func (h *PINHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be exactly 4 digits"})
		return
	}

	existing, err := h.settings.Get(store.SettingPanelPINHash)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check PIN"})
		return
	}
	if existing != "" {
		if bcrypt.CompareHashAndPassword([]byte(existing), []byte(req.Current)) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect current PIN"})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}

	if err := h.settings.Set(store.SettingPanelPINHash, string(hash)); err != nil {
		h.logger.Error("set panel pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

// Verify checks a PIN without changing anything; the panel UI calls this
// before opening the settings screen.
func (h *PINHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	hash, err := h.settings.Get(store.SettingPanelPINHash)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get PIN"})
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no PIN configured"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
