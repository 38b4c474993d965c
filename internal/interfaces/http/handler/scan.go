package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/interfaces/http/dto"
)

// ScanRegistrar records label scans
type ScanRegistrar interface {
	RegisterScan(ctx context.Context, barcode, scannedBy string) (*marketplace.ScanResult, error)
}

// ScanHandler serves the packing-station scan endpoint
type ScanHandler struct {
	BaseHandler
	registrar ScanRegistrar
}

// NewScanHandler creates a ScanHandler
func NewScanHandler(registrar ScanRegistrar) *ScanHandler {
	return &ScanHandler{registrar: registrar}
}

// RegisterRoutes mounts the handler under rg
func (h *ScanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scans", h.RegisterScan)
}

// RegisterScan handles POST /scans
//
// @ID           registerScan
// @Summary      Register a label scan
// @Description  Records a packing-station scan of a shipment barcode and returns the matching order item
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        request body dto.ScanRequest true "Scanned barcode"
// @Success      200 {object} dto.Response{data=marketplace.ScanResult}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /scans [post]
func (h *ScanHandler) RegisterScan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.registrar.RegisterScan(c.Request.Context(), req.Barcode, req.ScannedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
