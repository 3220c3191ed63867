package handler

import (
	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
	"github.com/labstack/echo/v4"
)

// DeviceCardHandler serves the device card: everything known about a
// device by serial number, its repairs and the Bitrix deals linked to its
// repair orders.
type DeviceCardHandler struct {
	Handler
	service *service.DeviceCardService
}

func NewDeviceCardHandler(s *server.Server, deviceCardService *service.DeviceCardService) *DeviceCardHandler {
	return &DeviceCardHandler{
		Handler: NewHandler(s),
		service: deviceCardService,
	}
}

type SerialNumberRequest struct {
	SerialNumber string `param:"serial_number" validate:"min=1,max=255" doc:"Серийный номер"`
}

func (r *SerialNumberRequest) Validate() error {
	return validate.Struct(r)
}

type FirmRequest struct {
	FirmID int64 `param:"firm" validate:"min=0" doc:"Id фирмы"`
}

func (r *FirmRequest) Validate() error {
	return validate.Struct(r)
}

type RepairRequest struct {
	RepairID int64 `param:"repair_id" validate:"min=0" doc:"Id документа отпуска в производство"`
}

func (r *RepairRequest) Validate() error {
	return validate.Struct(r)
}

type RepairOrderRequest struct {
	RepairOrderID int64 `param:"repair_order_id" validate:"min=0" doc:"Id документа возврат на ремонт"`
}

func (r *RepairOrderRequest) Validate() error {
	return validate.Struct(r)
}

// CreateBitrixDealRequest links a deal number, sent as {"number": 123},
// to a repair order.
type CreateBitrixDealRequest struct {
	RepairOrderID int64  `param:"repair_order_id" json:"-" validate:"min=0" doc:"Id документа возврат на ремонт"`
	Number        *int64 `json:"number" validate:"required,min=0"`
}

func (r *CreateBitrixDealRequest) Validate() error {
	return validate.Struct(r)
}

type BitrixDealLinkRequest struct {
	RepairOrderID int64 `param:"repair_order_id" validate:"min=0" doc:"Id документа возврат на ремонт"`
	DealNumber    int64 `param:"deal_number" validate:"min=0" doc:"Номер сделки в битрикс"`
}

func (r *BitrixDealLinkRequest) Validate() error {
	return validate.Struct(r)
}

type BitrixDealRequest struct {
	DealNumber int64 `param:"deal_number" validate:"min=0" doc:"Номер сделки"`
}

func (r *BitrixDealRequest) Validate() error {
	return validate.Struct(r)
}

func (h *DeviceCardHandler) GetNomenclature(c echo.Context, db database.Querier, req *SerialNumberRequest) (*record.Row, error) {
	return h.service.GetNomenclature(c.Request().Context(), db, req.SerialNumber)
}

func (h *DeviceCardHandler) GetRepairsWithBitrixDeals(c echo.Context, db database.Querier, req *SerialNumberRequest) ([]*record.Row, error) {
	return h.service.GetRepairsWithBitrixDeals(c.Request().Context(), db, req.SerialNumber)
}

func (h *DeviceCardHandler) GetOrder(c echo.Context, db database.Querier, req *SerialNumberRequest) (*record.Row, error) {
	return h.service.GetOrder(c.Request().Context(), db, req.SerialNumber)
}

func (h *DeviceCardHandler) GetRepairOrdersByFirm(c echo.Context, db database.Querier, req *FirmRequest) ([]*record.Row, error) {
	return h.service.GetRepairOrdersByFirm(c.Request().Context(), db, req.FirmID)
}

func (h *DeviceCardHandler) GetRepairOrderByRepair(c echo.Context, db database.Querier, req *RepairRequest) (*record.Row, error) {
	return h.service.GetRepairOrderByRepair(c.Request().Context(), db, req.RepairID)
}

func (h *DeviceCardHandler) GetRepair(c echo.Context, db database.Querier, req *RepairRequest) (*record.Row, error) {
	return h.service.GetRepair(c.Request().Context(), db, req.RepairID)
}

func (h *DeviceCardHandler) GetRepairsByRepairOrder(c echo.Context, db database.Querier, req *RepairOrderRequest) ([]*record.Row, error) {
	return h.service.GetRepairsByRepairOrder(c.Request().Context(), db, req.RepairOrderID)
}

func (h *DeviceCardHandler) GetRepairsByRepairOrderWithBitrixDeals(c echo.Context, db database.Querier, req *RepairOrderRequest) ([]*record.Row, error) {
	return h.service.GetRepairsByRepairOrderWithBitrixDeals(c.Request().Context(), db, req.RepairOrderID)
}

func (h *DeviceCardHandler) GetBitrixDeals(c echo.Context, db database.Querier, req *RepairOrderRequest) ([]*record.Row, error) {
	return h.service.GetBitrixDeals(c.Request().Context(), db, req.RepairOrderID)
}

// CreateBitrixDeal answers with the id of the new link.
func (h *DeviceCardHandler) CreateBitrixDeal(c echo.Context, db database.Querier, req *CreateBitrixDealRequest) (int64, error) {
	return h.service.CreateBitrixDeal(c.Request().Context(), db, req.RepairOrderID, *req.Number)
}

func (h *DeviceCardHandler) DeleteBitrixDeal(c echo.Context, db database.Querier, req *BitrixDealLinkRequest) error {
	return h.service.DeleteBitrixDeal(c.Request().Context(), db, req.RepairOrderID, req.DealNumber)
}

func (h *DeviceCardHandler) GetRepairOrdersByBitrixDeal(c echo.Context, db database.Querier, req *BitrixDealRequest) ([]*record.Row, error) {
	return h.service.GetRepairOrdersByBitrixDeal(c.Request().Context(), db, req.DealNumber)
}
