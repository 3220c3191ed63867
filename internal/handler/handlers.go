package handler

import (
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// takes one object instead of many.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	BOM        *BOMHandler
	DeviceCard *DeviceCardHandler
	Report     *ReportHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s),
		BOM:        NewBOMHandler(s, services.BOM),
		DeviceCard: NewDeviceCardHandler(s, services.DeviceCard),
		Report:     NewReportHandler(s, services.Report),
	}
}
