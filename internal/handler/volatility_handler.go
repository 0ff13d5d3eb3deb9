package handler

import (
	"fmt"
	"net/http"
	"strings"

	"cryptovol/internal/service"
	"cryptovol/internal/util"

	"github.com/gin-gonic/gin"
)

type VolatilityHandler struct {
	volatilityService *service.VolatilityService
}

func NewVolatilityHandler(volatilityService *service.VolatilityService) *VolatilityHandler {
	return &VolatilityHandler{
		volatilityService: volatilityService,
	}
}

type volatilityQuery struct {
	LookbackHours int    `form:"lookback_hours,default=24"`
	Interval      string `form:"interval,default=5m"`
}

// GetVolatility handles GET /volatility/:symbol
func (h *VolatilityHandler) GetVolatility(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		util.SendError(c, util.ErrValidation("symbol is required"))
		return
	}

	var query volatilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		util.SendError(c, util.ErrValidation("lookback_hours must be an integer"))
		return
	}
	if query.LookbackHours < 1 {
		util.SendError(c, util.ErrValidation("lookback_hours must be at least 1"))
		return
	}
	if !util.IsValidInterval(query.Interval) {
		msg := fmt.Sprintf("unsupported interval %q, valid values: %s", query.Interval, strings.Join(util.ValidIntervals(), ", "))
		util.SendError(c, util.ErrValidation(msg))
		return
	}

	report, err := h.volatilityService.GetVolatility(c.Request.Context(), symbol, query.Interval, query.LookbackHours)
	if err != nil {
		util.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
