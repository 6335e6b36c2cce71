package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

const invalidPredictionTypeMessage = "Invalid prediction type"

// PredictionAPI is what the handlers need from the prediction service.
type PredictionAPI interface {
	GetAllPredictions(ctx context.Context, date string, forceRefresh bool) (prediction.Set, error)
	GetPredictionsByType(ctx context.Context, date, predictionType string, forceRefresh bool) ([]prediction.Prediction, prediction.Metadata, error)
	GetPredictionForGame(ctx context.Context, gameID int64) (prediction.GamePredictions, error)
	Refresh(ctx context.Context, force bool) bool
	Status() usecase.Status
	AvailableDates() []usecase.DateOption
}

type Handler struct {
	predictions PredictionAPI
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(predictions PredictionAPI, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		predictions: predictions,
		logger:      logger,
		validator:   validator.New(),
	}
}

type predictionsQuery struct {
	Date    string `validate:"omitempty,datetime=2006-01-02"`
	Refresh bool
}

type predictionTypeRequest struct {
	Type string `validate:"required,max=64"`
}

type gameRequest struct {
	GameID int64 `validate:"gt=0"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictions")
	defer span.End()

	query, err := h.parsePredictionsQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	set, err := h.predictions.GetAllPredictions(ctx, query.Date, query.Refresh)
	if err != nil {
		h.logger.ErrorContext(ctx, "get predictions failed", "date", query.Date, "refresh", query.Refresh, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, setToDTO(set))
}

func (h *Handler) GetPredictionsByType(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictionsByType")
	defer span.End()

	typeReq := predictionTypeRequest{Type: strings.TrimSpace(r.PathValue("predictionType"))}
	if err := h.validateRequest(ctx, typeReq); err != nil {
		writeErrorMessage(ctx, w, err, invalidPredictionTypeMessage)
		return
	}
	query, err := h.parsePredictionsQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, metadata, err := h.predictions.GetPredictionsByType(ctx, query.Date, typeReq.Type, query.Refresh)
	if err != nil {
		if errors.Is(err, prediction.ErrUnknownProposition) {
			writeErrorMessage(ctx, w, err, invalidPredictionTypeMessage)
			return
		}
		h.logger.ErrorContext(ctx, "get predictions by type failed", "type", typeReq.Type, "date", query.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, predictionsByTypeDTO{
		Predictions: predictionsToDTO(items),
		Metadata:    metadataToDTO(metadata),
	})
}

func (h *Handler) GetGamePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGamePrediction")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("gameID"))
	gameID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: game id must be an integer", usecase.ErrInvalidInput))
		return
	}
	if err := h.validateRequest(ctx, gameRequest{GameID: gameID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.predictions.GetPredictionForGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, usecase.ErrNotFound) {
			h.logger.ErrorContext(ctx, "get game prediction failed", "game_id", gameID, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, gamePredictionsToDTO(result))
}

func (h *Handler) GetAvailableDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAvailableDates")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, datesToDTO(h.predictions.AvailableDates()))
}

func (h *Handler) RefreshData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshData")
	defer span.End()

	h.predictions.Refresh(ctx, true)
	h.logger.InfoContext(ctx, "manual refresh requested")

	writeJSON(ctx, w, http.StatusOK, refreshDTO{Success: true})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, statusToDTO(h.predictions.Status()))
}

func (h *Handler) parsePredictionsQuery(ctx context.Context, r *http.Request) (predictionsQuery, error) {
	values := r.URL.Query()
	query := predictionsQuery{
		Date: strings.TrimSpace(values.Get("date")),
		// Only the literal "true" forces a refresh.
		Refresh: strings.EqualFold(strings.TrimSpace(values.Get("refresh")), "true"),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		return predictionsQuery{}, err
	}
	return query, nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
