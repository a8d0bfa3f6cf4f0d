package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinvita/clinstock/internal/service"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetRupture returns products at risk of stockout within ?days (default 7).
func (h *ReportHandler) GetRupture(c *gin.Context) {
	days := 7.0
	if v, err := strconv.ParseFloat(c.DefaultQuery("days", "7"), 64); err == nil && v > 0 {
		days = v
	}

	rows, err := h.service.RuptureAlert(c.Request.Context(), days)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows), "horizon_days": days})
}

// GetReplenishment returns products at or below their reorder point.
func (h *ReportHandler) GetReplenishment(c *gin.Context) {
	rows, err := h.service.ReplenishmentList(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// GetExpiring returns lots expiring within ?days (default 30).
func (h *ReportHandler) GetExpiring(c *gin.Context) {
	days := 30
	if v, err := strconv.Atoi(c.DefaultQuery("days", "30")); err == nil && v > 0 {
		days = v
	}

	lots, err := h.service.ExpiringLots(c.Request.Context(), days)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"lots": lots, "count": len(lots), "within_days": days})
}

// GetTopConsumed ranks products by consumption over ?from / ?to (YYYY-MM,
// both optional) capped at ?limit (default 20).
func (h *ReportHandler) GetTopConsumed(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	limit := 20
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		limit = v
	}

	totals, err := h.service.TopConsumed(c.Request.Context(), from, to, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": totals, "count": len(totals)})
}
