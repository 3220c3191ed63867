package service

import (
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
)

type Services struct {
	BOM        *BOMService
	DeviceCard *DeviceCardService
	Report     *ReportService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		BOM:        NewBOMService(s, repos.BOM),
		DeviceCard: NewDeviceCardService(s, repos.DeviceCard),
		Report:     NewReportService(s, repos.Report),
	}, nil
}
