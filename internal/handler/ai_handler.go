package handler

import (
	"errors"
	"net/http"
	"strings"

	"civic-portal/internal/ai"
	"civic-portal/internal/response"

	"go.uber.org/zap"
)

type AIHandler struct {
	client *ai.Client
	logger *zap.Logger
}

func NewAIHandler(client *ai.Client, logger *zap.Logger) *AIHandler {
	return &AIHandler{client: client, logger: logger}
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		response.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.client.Ask(r.Context(), in.Message)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			h.logger.Warn("assistant request failed", zap.Error(err))
			response.Error(w, http.StatusBadGateway, "Assistant is unavailable right now. Please try again later.")
			return
		}
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"reply": reply})
}
