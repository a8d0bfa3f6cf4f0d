package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinvita/clinstock/internal/service"
)

type VerificationHandler struct {
	service *service.VerifyService
}

func NewVerificationHandler(service *service.VerifyService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// GetReport returns the full verification report, most urgent rows first.
func (h *VerificationHandler) GetReport(c *gin.Context) {
	rows, err := h.service.Run(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// RebuildDemand regenerates the demand aggregates from the exit history.
func (h *VerificationHandler) RebuildDemand(c *gin.Context) {
	if err := h.service.RebuildDemand(c.Request.Context()); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rebuilt"})
}
