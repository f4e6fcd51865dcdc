package handler

import (
	"net/http"

	"civic-portal/internal/config"
	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/response"
	"civic-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type IoTHandler struct {
	repo      repository.SensorsRepo
	publisher *service.TelemetryPublisher
	cfg       config.Config
	logger    *zap.Logger
}

func NewIoTHandler(repo repository.SensorsRepo, publisher *service.TelemetryPublisher, cfg config.Config, logger *zap.Logger) *IoTHandler {
	return &IoTHandler{repo: repo, publisher: publisher, cfg: cfg, logger: logger}
}

func (h *IoTHandler) Latest(w http.ResponseWriter, r *http.Request) {
	readings, err := h.repo.Latest(r.Context(), r.URL.Query().Get("sensorId"), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	if readings == nil {
		readings = []domain.SensorReading{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

func (h *IoTHandler) SensorHistory(w http.ResponseWriter, r *http.Request) {
	readings, err := h.repo.Latest(r.Context(), chi.URLParam(r, "sensorId"), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, err)
		return
	}
	if readings == nil {
		readings = []domain.SensorReading{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

func (h *IoTHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.PurgeAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("sensor readings purged")
	response.JSON(w, http.StatusOK, map[string]string{"message": "All sensor readings deleted."})
}

func (h *IoTHandler) StartSimulator(w http.ResponseWriter, r *http.Request) {
	h.publisher.Start(h.cfg.SensorInterval, h.cfg.SensorCount)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sensor simulator started.",
		"running": true,
	})
}

func (h *IoTHandler) StopSimulator(w http.ResponseWriter, r *http.Request) {
	h.publisher.Stop()
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sensor simulator stopped.",
		"running": false,
	})
}

func (h *IoTHandler) SimulatorStatus(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]bool{"running": h.publisher.Running()})
}
