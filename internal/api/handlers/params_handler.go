package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinvita/clinstock/internal/repository"
	"github.com/clinvita/clinstock/internal/service"
)

type ParamsHandler struct {
	service *service.VerifyService
}

func NewParamsHandler(service *service.VerifyService) *ParamsHandler {
	return &ParamsHandler{service: service}
}

// GetParams returns the resolved replenishment parameters, stored values
// merged over config defaults.
func (h *ParamsHandler) GetParams(c *gin.Context) {
	params, err := h.service.ResolveParams(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, params)
}

type setParamsRequest struct {
	ServiceLevel   *float64 `json:"service_level"`
	LeadTimeMean   *float64 `json:"lead_time_mean"`
	LeadTimeStdDev *float64 `json:"lead_time_std_dev"`
}

// SetParams stores the parameters present in the request body.
func (h *ParamsHandler) SetParams(c *gin.Context) {
	var req setParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ServiceLevel == nil && req.LeadTimeMean == nil && req.LeadTimeStdDev == nil {
		errorResponse(c, http.StatusBadRequest, "no parameters provided")
		return
	}

	ctx := c.Request.Context()
	pairs := []struct {
		key   string
		value *float64
	}{
		{repository.ParamServiceLevel, req.ServiceLevel},
		{repository.ParamLeadTimeMean, req.LeadTimeMean},
		{repository.ParamLeadTimeStdDev, req.LeadTimeStdDev},
	}
	for _, p := range pairs {
		if p.value == nil {
			continue
		}
		if err := h.service.SetParam(ctx, p.key, *p.value); err != nil {
			errorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	params, err := h.service.ResolveParams(ctx)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, params)
}
