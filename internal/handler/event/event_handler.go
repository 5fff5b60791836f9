package event

import (
	"errors"
	"net/http"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/model/request"
	"github.com/dinerozz/focus-session-backend/internal/model/response/wrapper"
	service "github.com/dinerozz/focus-session-backend/internal/service/event"
	"github.com/dinerozz/focus-session-backend/middleware"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	srv *service.Service
}

func NewEventHandler(srv *service.Service) *EventHandler {
	return &EventHandler{srv: srv}
}

// Create godoc
// @Summary      Record a timer event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        event  body      request.Event  true  "Event"
// @Success      201    {object}  wrapper.ResponseWrapper{data=entity.Event}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Failure      401    {object}  wrapper.ErrorWrapper
// @Failure      500    {object}  wrapper.ErrorWrapper
// @Router       /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	var req request.Event
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid request body: " + err.Error(), Success: false})
		return
	}

	event, err := h.srv.Record(c.Request.Context(), userID, req.EventType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: event, Success: true})
}

// List godoc
// @Summary      List timer events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        event_type  query     string  false  "start, switch, stop or tick"
// @Param        start_time  query     string  false  "RFC3339 lower bound"
// @Param        end_time    query     string  false  "RFC3339 upper bound"
// @Param        limit       query     int     false  "Max events (default 500); newest kept unless start_time is set"
// @Success      200         {object}  wrapper.ResponseWrapper{data=[]entity.Event}
// @Failure      400         {object}  wrapper.ErrorWrapper
// @Failure      401         {object}  wrapper.ErrorWrapper
// @Failure      500         {object}  wrapper.ErrorWrapper
// @Router       /events [get]
func (h *EventHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	var filter entity.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid query parameters: " + err.Error(), Success: false})
		return
	}
	filter.UserID = userID

	events, err := h.srv.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: events, Success: true})
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownEventType) {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}
	c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
}
