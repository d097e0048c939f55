package handler

import (
	"log/slog"
	"net/http"
	"os"
)

// PrivacyHandler serves the static privacy policy page.
type PrivacyHandler struct {
	path string
}

func NewPrivacyHandler(path string) *PrivacyHandler { return &PrivacyHandler{path: path} }

func (h *PrivacyHandler) Show(w http.ResponseWriter, _ *http.Request) {
	body, err := os.ReadFile(h.path)
	if err != nil {
		slog.Error("read privacy policy", "path", h.path, "error", err)
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
