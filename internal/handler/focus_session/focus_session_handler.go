package focus_session

import (
	"errors"
	"net/http"

	"github.com/dinerozz/focus-session-backend/internal/model/request"
	"github.com/dinerozz/focus-session-backend/internal/model/response"
	"github.com/dinerozz/focus-session-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-session-backend/internal/service/advisor"
	service "github.com/dinerozz/focus-session-backend/internal/service/focus_session"
	"github.com/dinerozz/focus-session-backend/internal/session"
	"github.com/dinerozz/focus-session-backend/middleware"
	"github.com/gin-gonic/gin"
)

const missingInput = "body must contain elapsed_seconds or both duration_seconds and active_ratio"

type FocusSessionHandler struct {
	srv     *service.Service
	advisor *advisor.Advisor
}

func NewFocusSessionHandler(srv *service.Service, adv *advisor.Advisor) *FocusSessionHandler {
	return &FocusSessionHandler{srv: srv, advisor: adv}
}

// Predict godoc
// @Summary Classify a session
// @Description Classify raw timer counters or precomputed metrics. Falls back to the local heuristic when the classifier is unavailable.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body request.SessionInput true "Raw counters or metrics"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.Prediction}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 429 {object} wrapper.ErrorWrapper
// @Router /predict [post]
func (h *FocusSessionHandler) Predict(c *gin.Context) {
	var req request.SessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	var (
		prediction *response.Prediction
		err        error
	)
	switch {
	case req.IsRaw():
		prediction, err = h.srv.PredictRaw(c.Request.Context(), req.Raw())
	case req.IsMetrics():
		prediction, err = h.srv.Predict(c.Request.Context(), req.Metrics())
	default:
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: missingInput, Success: false})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: prediction, Success: true})
}

// Advice godoc
// @Summary Get coaching advice
// @Description Short advice for a session status and intensity. Always answers; uses a fixed message when the generator is unavailable.
// @Tags sessions
// @Accept json
// @Produce json
// @Param advice body request.Advice true "Status and intensity"
// @Success 200 {object} wrapper.ResponseWrapper{data=advisor.Advice}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Router /advice [post]
func (h *FocusSessionHandler) Advice(c *gin.Context) {
	var req request.Advice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	advice := h.advisor.Advise(c.Request.Context(), req.Status, req.IntensityPercent)
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: advice, Success: true})
}

// CreateSession godoc
// @Summary Finish a focus session
// @Description Classify, advise and store a finished session. A storage failure still returns the analysis with saved=false.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body request.SessionInput true "Raw counters or metrics"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.SessionOutcome}
// @Success 201 {object} wrapper.ResponseWrapper{data=response.SessionOutcome}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 401 {object} wrapper.ErrorWrapper
// @Router /sessions [post]
func (h *FocusSessionHandler) CreateSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	var req request.SessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	var (
		outcome *response.SessionOutcome
		err     error
	)
	switch {
	case req.IsRaw():
		outcome, err = h.srv.Complete(c.Request.Context(), userID, req.Raw())
	case req.IsMetrics():
		outcome, err = h.srv.Analyze(c.Request.Context(), userID, req.Metrics())
	default:
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: missingInput, Success: false})
		return
	}

	var persistErr *service.PersistenceError
	if errors.As(err, &persistErr) {
		c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: outcome, Success: true})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: outcome, Success: true})
}

func writeError(c *gin.Context, err error) {
	var invalid *session.InvalidInputError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}
	c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
}
