package repository

import (
	"context"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
)

const (
	nomenclatureBySerialSQL = `
		select n.nomenclature_id as "id",
		       n.name as "name",
		       n.article as "article"
		  from serial_numbers stp
		  join nomenclature n on n.nomenclature_id = stp.nomenclature_id
		 where stp.sn_text = $1`

	repairsBySerialSQL = `
		select repairs.repair_id as "id",
		       repairs.repair_order_id as "repairOrderId",
		       repairs.doc_number as "number",
		       repairs.doc_date as "date",
		       repairs.status as "status"
		  from repairs_by_serial_number($1) repairs`

	bitrixDealsBySerialSQL = `
		select bitrix_deal.repair_order_id as "repairOrderId",
		       bitrix_deal.deal_number as "number"
		  from bitrix_deals_by_serial_number($1) bitrix_deal`

	orderBySerialSQL = `
		select o.doc_id as "id",
		       o.doc_number as "number",
		       o.doc_date as "date",
		       o.firm_name as "firm"
		  from orders_by_serial_number($1) o`

	repairOrdersByFirmSQL = `
		select dh.doc_id as "id",
		       dh.doc_number as "number",
		       dh.doc_date as "date"
		  from doc_head dh
		 where dh.doc_type = 'REPAIR_ORDER'
		   and dh.firm_id = $1`

	repairOrderByRepairSQL = `
		select dh.doc_id as "id",
		       dh.doc_number as "number",
		       dh.doc_date as "date"
		  from doc_head dh
		  join repair_links rl on rl.repair_order_id = dh.doc_id
		 where rl.repair_id = $1`

	repairInfoSQL = `
		select serial_number as "serialNumber",
		       repair_id as "id",
		       repair_order_id as "repairOrderId",
		       doc_date as "date",
		       defect as "defect",
		       status as "status"
		  from repair_info($1)`

	repairsByRepairOrderSQL = `
		select serial_number as "serialNumber",
		       repair_id as "id",
		       repair_order_id as "repairOrderId",
		       doc_date as "date",
		       status as "status"
		  from repairs_by_repair_order($1)`

	bitrixDealsByRepairOrderSQL = `
		select bitrix_deal.repair_order_id as "repairOrderId",
		       bitrix_deal.deal_number as "number"
		  from bitrix_deals_by_repair_order($1) bitrix_deal`

	bitrixDealNumbersSQL = `
		select rl.deal_number as "number"
		  from repair_bitrix_deal_link rl
		 where rl.repair_id = $1`

	createBitrixDealLinkSQL = `
		select rl.res_id
		  from repair_bitrix_deal_link_i($1, $2) rl`

	deleteBitrixDealLinkSQL = `
		select rl.res
		  from repair_bitrix_deal_link_d($1, $2) rl`

	repairOrdersByBitrixDealSQL = `
		select dh.doc_id as "id",
		       dh.doc_number as "number",
		       dh.doc_date as "date"
		  from doc_head dh
		  join repair_bitrix_deal_link rl on rl.repair_id = dh.doc_id
		 where rl.deal_number = $1`
)

// DeviceCardRepository reads the device card: serial numbers, repairs,
// repair orders and their links to Bitrix deals.
type DeviceCardRepository struct{}

func NewDeviceCardRepository() *DeviceCardRepository {
	return &DeviceCardRepository{}
}

func (r *DeviceCardRepository) GetNomenclature(ctx context.Context, q database.Querier, serialNumber string) (*record.Row, error) {
	return database.One(ctx, q, nomenclatureBySerialSQL, serialNumber)
}

func (r *DeviceCardRepository) GetRepairsBySerialNumber(ctx context.Context, q database.Querier, serialNumber string) ([]*record.Row, error) {
	return database.All(ctx, q, repairsBySerialSQL, serialNumber)
}

// GetBitrixDealsBySerialNumber returns (repairOrderId, number) pairs for
// every repair order of the device.
func (r *DeviceCardRepository) GetBitrixDealsBySerialNumber(ctx context.Context, q database.Querier, serialNumber string) ([]*record.Row, error) {
	return database.All(ctx, q, bitrixDealsBySerialSQL, serialNumber)
}

func (r *DeviceCardRepository) GetOrder(ctx context.Context, q database.Querier, serialNumber string) (*record.Row, error) {
	return database.One(ctx, q, orderBySerialSQL, serialNumber)
}

func (r *DeviceCardRepository) GetRepairOrdersByFirm(ctx context.Context, q database.Querier, firmID int64) ([]*record.Row, error) {
	return database.All(ctx, q, repairOrdersByFirmSQL, firmID)
}

func (r *DeviceCardRepository) GetRepairOrderByRepair(ctx context.Context, q database.Querier, repairID int64) (*record.Row, error) {
	return database.One(ctx, q, repairOrderByRepairSQL, repairID)
}

func (r *DeviceCardRepository) GetRepair(ctx context.Context, q database.Querier, repairID int64) (*record.Row, error) {
	return database.One(ctx, q, repairInfoSQL, repairID)
}

func (r *DeviceCardRepository) GetRepairsByRepairOrder(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	return database.All(ctx, q, repairsByRepairOrderSQL, repairOrderID)
}

func (r *DeviceCardRepository) GetBitrixDealsByRepairOrder(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	return database.All(ctx, q, bitrixDealsByRepairOrderSQL, repairOrderID)
}

// GetBitrixDealNumbers returns the deal numbers linked to a repair order.
func (r *DeviceCardRepository) GetBitrixDealNumbers(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	return database.All(ctx, q, bitrixDealNumbersSQL, repairOrderID)
}

// CreateBitrixDealLink links a deal to a repair order and returns the
// procedure's result id. ok is false when the procedure returned no row.
func (r *DeviceCardRepository) CreateBitrixDealLink(ctx context.Context, q database.Querier, repairOrderID, dealNumber int64) (any, bool, error) {
	return database.Scalar(ctx, q, createBitrixDealLinkSQL, repairOrderID, dealNumber)
}

// DeleteBitrixDealLink removes a link and returns the procedure's result
// code; zero means nothing was deleted.
func (r *DeviceCardRepository) DeleteBitrixDealLink(ctx context.Context, q database.Querier, repairOrderID, dealNumber int64) (any, bool, error) {
	return database.Scalar(ctx, q, deleteBitrixDealLinkSQL, repairOrderID, dealNumber)
}

func (r *DeviceCardRepository) GetRepairOrdersByBitrixDeal(ctx context.Context, q database.Querier, dealNumber int64) ([]*record.Row, error) {
	return database.All(ctx, q, repairOrdersByBitrixDealSQL, dealNumber)
}
