package service

import (
	"context"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
)

type BOMService struct {
	server *server.Server
	repo   *repository.BOMRepository
}

func NewBOMService(s *server.Server, repo *repository.BOMRepository) *BOMService {
	return &BOMService{server: s, repo: repo}
}

// GetInfo returns the BOM header, or a 404 when the id is unknown.
func (s *BOMService) GetInfo(ctx context.Context, q database.Querier, bomID int64) (*record.Row, error) {
	return requireRow(s.repo.GetInfo(ctx, q, bomID))
}

func (s *BOMService) GetStructure(ctx context.Context, q database.Querier, bomID int64) ([]*record.Row, error) {
	return s.repo.GetStructure(ctx, q, bomID)
}

func (s *BOMService) GetTree(ctx context.Context, q database.Querier, bomID int64) ([]*record.Row, error) {
	return s.repo.GetTree(ctx, q, bomID)
}

func (s *BOMService) List(ctx context.Context, q database.Querier, filter repository.BOMFilter) ([]*record.Row, error) {
	return s.repo.List(ctx, q, filter)
}
