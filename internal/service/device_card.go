package service

import (
	"context"
	"reflect"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/rs/zerolog"
)

const (
	// BitrixDealsField is the list added to every merged repair.
	BitrixDealsField = "bitrixDeals"

	// RepairOrderIDField is the join key shared by repairs and deal links.
	RepairOrderIDField = "repairOrderId"

	dealNotCreatedMessage = "Сделка битрикс не была создана."
	linkNotFoundMessage   = "Не удалено. Не существует связки сделки битрикс и заказа в ремонт."
)

// BitrixDeal is one entry of a repair's bitrixDeals list.
type BitrixDeal struct {
	Number any `json:"number"`
}

type DeviceCardService struct {
	server *server.Server
	repo   *repository.DeviceCardRepository
}

func NewDeviceCardService(s *server.Server, repo *repository.DeviceCardRepository) *DeviceCardService {
	return &DeviceCardService{server: s, repo: repo}
}

func (s *DeviceCardService) GetNomenclature(ctx context.Context, q database.Querier, serialNumber string) (*record.Row, error) {
	return requireRow(s.repo.GetNomenclature(ctx, q, serialNumber))
}

// GetRepairsWithBitrixDeals returns the repairs of a device, each with the
// deals linked to its repair order.
func (s *DeviceCardService) GetRepairsWithBitrixDeals(ctx context.Context, q database.Querier, serialNumber string) ([]*record.Row, error) {
	repairs, err := s.repo.GetRepairsBySerialNumber(ctx, q, serialNumber)
	if err != nil {
		return nil, err
	}

	deals, err := s.repo.GetBitrixDealsBySerialNumber(ctx, q, serialNumber)
	if err != nil {
		return nil, err
	}

	return MergeBitrixDeals(repairs, deals), nil
}

func (s *DeviceCardService) GetOrder(ctx context.Context, q database.Querier, serialNumber string) (*record.Row, error) {
	return requireRow(s.repo.GetOrder(ctx, q, serialNumber))
}

func (s *DeviceCardService) GetRepairOrdersByFirm(ctx context.Context, q database.Querier, firmID int64) ([]*record.Row, error) {
	return s.repo.GetRepairOrdersByFirm(ctx, q, firmID)
}

func (s *DeviceCardService) GetRepairOrderByRepair(ctx context.Context, q database.Querier, repairID int64) (*record.Row, error) {
	return requireRow(s.repo.GetRepairOrderByRepair(ctx, q, repairID))
}

func (s *DeviceCardService) GetRepair(ctx context.Context, q database.Querier, repairID int64) (*record.Row, error) {
	return requireRow(s.repo.GetRepair(ctx, q, repairID))
}

func (s *DeviceCardService) GetRepairsByRepairOrder(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	return s.repo.GetRepairsByRepairOrder(ctx, q, repairOrderID)
}

func (s *DeviceCardService) GetRepairsByRepairOrderWithBitrixDeals(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	repairs, err := s.repo.GetRepairsByRepairOrder(ctx, q, repairOrderID)
	if err != nil {
		return nil, err
	}

	deals, err := s.repo.GetBitrixDealsByRepairOrder(ctx, q, repairOrderID)
	if err != nil {
		return nil, err
	}

	return MergeBitrixDeals(repairs, deals), nil
}

func (s *DeviceCardService) GetBitrixDeals(ctx context.Context, q database.Querier, repairOrderID int64) ([]*record.Row, error) {
	return s.repo.GetBitrixDealNumbers(ctx, q, repairOrderID)
}

// CreateBitrixDeal links dealNumber to a repair order and returns the id of
// the new link. A procedure result of zero, NULL or no row is a 406.
func (s *DeviceCardService) CreateBitrixDeal(ctx context.Context, q database.Querier, repairOrderID, dealNumber int64) (int64, error) {
	value, found, err := s.repo.CreateBitrixDealLink(ctx, q, repairOrderID, dealNumber)
	if err != nil {
		return 0, err
	}

	id, ok := resultID(value, found)
	if !ok {
		zerolog.Ctx(ctx).Warn().
			Int64("repair_order_id", repairOrderID).
			Int64("deal_number", dealNumber).
			Msg("bitrix deal link was not created")
		return 0, errs.NewNotAcceptableError(dealNotCreatedMessage, false)
	}

	return id, nil
}

// DeleteBitrixDeal removes a link. A zero or missing result means the link
// did not exist and yields a 404.
func (s *DeviceCardService) DeleteBitrixDeal(ctx context.Context, q database.Querier, repairOrderID, dealNumber int64) error {
	value, found, err := s.repo.DeleteBitrixDealLink(ctx, q, repairOrderID, dealNumber)
	if err != nil {
		return err
	}

	if _, ok := resultID(value, found); !ok {
		return errs.NewNotFoundError(linkNotFoundMessage, false, nil)
	}

	return nil
}

func (s *DeviceCardService) GetRepairOrdersByBitrixDeal(ctx context.Context, q database.Querier, dealNumber int64) ([]*record.Row, error) {
	return s.repo.GetRepairOrdersByBitrixDeal(ctx, q, dealNumber)
}

// MergeBitrixDeals gives every repair a bitrixDeals list holding the number
// of each deal with the same repairOrderId, in deal order.
//
// Every (repair, deal) pair is compared, so duplicates on either side are
// kept: two equal deal rows add the number twice. Integer keys are compared
// as integers regardless of column width, other keys by plain equality. A
// repair or deal whose key is missing or NULL matches nothing. repairs is
// modified in place and returned.
func MergeBitrixDeals(repairs, deals []*record.Row) []*record.Row {
	dealKeys := make([]mergeKey, len(deals))
	for i, deal := range deals {
		dealKeys[i] = keyOf(deal)
	}

	for _, repair := range repairs {
		merged := make([]BitrixDeal, 0)

		key := keyOf(repair)
		for i, deal := range deals {
			if !key.matches(dealKeys[i]) {
				continue
			}
			number, _ := deal.Get("number")
			merged = append(merged, BitrixDeal{Number: number})
		}

		repair.Set(BitrixDealsField, merged)
	}

	return repairs
}

// mergeKey is the repairOrderId of a row, normalized for comparison.
type mergeKey struct {
	value   any
	integer int64
	isInt   bool
}

func keyOf(row *record.Row) mergeKey {
	value, _ := row.Get(RepairOrderIDField)
	if n, ok := record.Int64(value); ok {
		return mergeKey{integer: n, isInt: true}
	}
	return mergeKey{value: value}
}

func (k mergeKey) matches(other mergeKey) bool {
	switch {
	case k.isInt || other.isInt:
		return k.isInt && other.isInt && k.integer == other.integer
	case k.value == nil || other.value == nil:
		return false
	default:
		return reflect.DeepEqual(k.value, other.value)
	}
}
