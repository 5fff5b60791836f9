package history

import (
	"net/http"
	"strconv"

	"github.com/dinerozz/focus-session-backend/internal/model/response/wrapper"
	service "github.com/dinerozz/focus-session-backend/internal/service/history"
	"github.com/dinerozz/focus-session-backend/middleware"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	srv *service.Service
}

func NewHistoryHandler(srv *service.Service) *HistoryHandler {
	return &HistoryHandler{srv: srv}
}

// List godoc
// @Summary      List past sessions
// @Description  Sessions of the current user, newest first
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number"  default(1)
// @Param        per_page  query     int  false  "Items per page (max 100)"  default(20)
// @Success      200       {object}  wrapper.PaginatedResponseWrapper{data=[]entity.SessionRecord}
// @Failure      400       {object}  wrapper.ErrorWrapper
// @Failure      401       {object}  wrapper.ErrorWrapper
// @Failure      500       {object}  wrapper.ErrorWrapper
// @Router       /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid page parameter", Success: false})
		return
	}
	perPage, err := queryInt(c, "per_page", service.DefaultPerPage)
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid per_page parameter", Success: false})
		return
	}

	records, meta, err := h.srv.List(c.Request.Context(), userID, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.PaginatedResponseWrapper{Data: records, Meta: meta, Success: true})
}

// Trend godoc
// @Summary      Focus intensity trend
// @Description  Chart points for the most recent sessions, oldest first
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Number of points (max 100)"
// @Success      200    {object}  wrapper.ResponseWrapper{data=[]entity.TrendPoint}
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Failure      401    {object}  wrapper.ErrorWrapper
// @Failure      500    {object}  wrapper.ErrorWrapper
// @Router       /history/trend [get]
func (h *HistoryHandler) Trend(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "Invalid limit parameter", Success: false})
		return
	}

	points, err := h.srv.Trend(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: points, Success: true})
}

// Stats godoc
// @Summary      Session statistics
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.HistoryStats}
// @Failure      401  {object}  wrapper.ErrorWrapper
// @Failure      500  {object}  wrapper.ErrorWrapper
// @Router       /history/stats [get]
func (h *HistoryHandler) Stats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User ID not found", Success: false})
		return
	}

	stats, err := h.srv.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: stats, Success: true})
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
