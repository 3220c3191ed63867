package repository

import (
	"context"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
)

const (
	bomInfoSQL = `
		select bom_list_id as "id",
		       descript as "description",
		       str_id as "strId",
		       created_at as "createdAt"
		  from bom_info($1)`

	bomStructureSQL = `
		select bom_item_id as "id",
		       bom_list_id as "bomId",
		       nomenclature_id as "nomenclatureId",
		       nomenclature_name as "nomenclatureName",
		       quantity as "quantity"
		  from bom_structure($1)`

	// The tree procedure takes (parent, root, expand, depth, flags, mode);
	// only the root varies.
	bomTreeSQL = `
		select id as "id",
		       parent_id as "parentId",
		       level as "level",
		       descript as "description",
		       quantity as "quantity"
		  from bom_tree(0, $1, 1, 0, 0, 0)`

	// bom_list_s filters on contained BOM, description and section when the
	// corresponding argument is not NULL.
	bomListSQL = `
		select bom_list_id as "id",
		       descript as "description",
		       str_id as "strId"
		  from bom_list_s(0, $1, 0, 0, $2, 0, 0, 0, 0, $3, '', 0, 0, 0)`
)

// BOMRepository reads bills of materials.
type BOMRepository struct{}

func NewBOMRepository() *BOMRepository {
	return &BOMRepository{}
}

// BOMFilter narrows the BOM list. nil fields are not applied.
type BOMFilter struct {
	ContainedBOM any
	Descript     any
	StrID        any
}

// GetInfo returns the header of one BOM, or nil.
func (r *BOMRepository) GetInfo(ctx context.Context, q database.Querier, bomID int64) (*record.Row, error) {
	return database.One(ctx, q, bomInfoSQL, bomID)
}

// GetStructure returns the direct items of a BOM.
func (r *BOMRepository) GetStructure(ctx context.Context, q database.Querier, bomID int64) ([]*record.Row, error) {
	return database.All(ctx, q, bomStructureSQL, bomID)
}

// GetTree returns the expanded component tree of a BOM.
func (r *BOMRepository) GetTree(ctx context.Context, q database.Querier, bomID int64) ([]*record.Row, error) {
	return database.All(ctx, q, bomTreeSQL, bomID)
}

// List returns the BOMs matching filter.
func (r *BOMRepository) List(ctx context.Context, q database.Querier, filter BOMFilter) ([]*record.Row, error) {
	return database.All(ctx, q, bomListSQL, filter.ContainedBOM, filter.Descript, filter.StrID)
}
