// Package repository holds the SQL the gateway runs against the ERP
// database.
//
// Every query is a selectable stored function or a plain select with
// explicit column aliases; the aliases are the JSON keys clients see.
// Repositories are stateless: the caller passes in the Querier of the
// current request's session.
package repository

import (
	"github.com/deppfellow/erp-gateway/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	BOM        *BOMRepository
	DeviceCard *DeviceCardRepository
	Report     *ReportRepository
}

// NewRepositories constructs the repository container.
func NewRepositories(_ *server.Server) *Repositories {
	return &Repositories{
		BOM:        NewBOMRepository(),
		DeviceCard: NewDeviceCardRepository(),
		Report:     NewReportRepository(),
	}
}
