package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"query-genie/internal/apis/dtos"
	"query-genie/internal/services"
)

const notConnectedMessage = "Database not connected"

type QueryHandler struct {
	queryService services.QueryService
}

func NewQueryHandler(queryService services.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

func (h *QueryHandler) Connect(c *gin.Context) {
	var req dtos.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.queryService.Connect(c.Request.Context(), c.GetString("sessionID"), &req)
	if err != nil {
		errorResponse(c, int(statusCode), err)
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

func (h *QueryHandler) Disconnect(c *gin.Context) {
	statusCode, err := h.queryService.Disconnect(c.Request.Context(), c.GetString("sessionID"))
	if err != nil {
		errorResponse(c, int(statusCode), err)
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    "Database disconnected successfully",
	})
}

func (h *QueryHandler) Chat(c *gin.Context) {
	var req dtos.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	response, statusCode, err := h.queryService.ProcessQuestion(c.Request.Context(), c.GetString("sessionID"), &req)
	if err != nil {
		errorResponse(c, int(statusCode), err)
		return
	}

	c.JSON(int(statusCode), response)
}

// ConfirmSQL replies with the bare envelope on success.
func (h *QueryHandler) ConfirmSQL(c *gin.Context) {
	var req dtos.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	env, statusCode, err := h.queryService.ConfirmPendingStatement(c.Request.Context(), c.GetString("sessionID"), &req)
	if err != nil {
		errorResponse(c, int(statusCode), err)
		return
	}

	c.JSON(int(statusCode), env)
}

func (h *QueryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data: dtos.HealthResponse{
			Status:   "ok",
			Sessions: h.queryService.ActiveSessions(),
		},
	})
}

func errorResponse(c *gin.Context, statusCode int, err error) {
	errorMsg := err.Error()
	if errors.Is(err, services.ErrNotConnected) {
		errorMsg = notConnectedMessage
	}
	c.JSON(statusCode, dtos.Response{
		Success: false,
		Error:   &errorMsg,
	})
}
