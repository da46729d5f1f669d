package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finflow/internal/services"
)

// MonitoringHandler serves the alerts dashboard.
type MonitoringHandler struct {
	monitoringService services.MonitoringServicer
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(monitoringService services.MonitoringServicer) *MonitoringHandler {
	return &MonitoringHandler{monitoringService: monitoringService}
}

// Alerts lists every condition needing attention
// @Summary     Alerts
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.Alert
// @Router      /monitoring/alerts [get]
func (h *MonitoringHandler) Alerts(c *gin.Context) {
	alerts, err := h.monitoringService.Alerts()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// OverdueDisbursements lists disbursements still waiting for an expense report
// @Summary     Overdue disbursements
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.DisbursementRequest
// @Router      /monitoring/overdue-disbursements [get]
func (h *MonitoringHandler) OverdueDisbursements(c *gin.Context) {
	requests, err := h.monitoringService.OverdueDisbursements()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// LinkStats reports how many validated reports are linked to a disbursement
// @Summary     Report link statistics
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.LinkStats
// @Router      /monitoring/link-stats [get]
func (h *MonitoringHandler) LinkStats(c *gin.Context) {
	stats, err := h.monitoringService.LinkStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
