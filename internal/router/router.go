// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers. Every /api route
// is also recorded in the OpenAPI document served on /openapi.json.
package router

import (
	"net/http"
	"strings"

	"github.com/deppfellow/erp-gateway/internal/handler"
	"github.com/deppfellow/erp-gateway/internal/middleware"
	"github.com/deppfellow/erp-gateway/internal/openapi"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
	"github.com/labstack/echo/v4"
)

// APIPrefix is the group every data route lives under.
const APIPrefix = "/api"

// NewRouter builds the Echo instance with global middleware, system routes
// and the authenticated /api group.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the New Relic transaction must
	// exist before the request logger is built, and Recover sits innermost
	// so a panic still passes through logging and metrics as a 500.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Metrics.Collect(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)

	api := router.Group(APIPrefix)
	api.Use(middlewares.Auth.RequireBasicAuth)

	routes := apiRoutes{group: api, document: h.OpenAPI.Document()}
	registerBOMRoutes(routes, h.BOM)
	registerDeviceCardRoutes(routes, h.DeviceCard)
	registerReportRoutes(routes, h.Report)

	return router
}

// apiRoutes registers a route in the /api group and documents it.
type apiRoutes struct {
	group    *echo.Group
	document *openapi.Document
}

func (r apiRoutes) add(op openapi.Operation, fn echo.HandlerFunc) {
	r.group.Add(op.Method, strings.TrimPrefix(op.Path, APIPrefix), fn)
	r.document.Add(op)
}

func registerBOMRoutes(r apiRoutes, h *handler.BOMHandler) {
	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/bom/:bom_id/info",
		Summary:  "Информация об спецификации",
		Tag:      handler.TagBOM,
		Request:  handler.BOMIDRequest{},
		Response: openapi.Object,
		Errors:   []int{http.StatusNotFound},
	}, handler.Handle(h.Handler, h.GetInfo, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/bom/:bom_id/structure",
		Summary:  "Структура спецификации",
		Tag:      handler.TagBOM,
		Request:  handler.BOMIDRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetStructure, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/bom/:bom_id/tree",
		Summary:  "Дерево спецификации",
		Tag:      handler.TagBOM,
		Request:  handler.BOMIDRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetTree, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/bom",
		Summary:  "Список спецификаций",
		Tag:      handler.TagBOM,
		Request:  handler.ListBOMRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.List, http.StatusOK))
}

func registerDeviceCardRoutes(r apiRoutes, h *handler.DeviceCardHandler) {
	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/serial_number/:serial_number/nomenclature",
		Summary:  "Получение номенклатуры по серийному номеру",
		Tag:      handler.TagDeviceCard,
		Request:  handler.SerialNumberRequest{},
		Response: openapi.Object,
		Errors:   []int{http.StatusNotFound},
	}, handler.Handle(h.Handler, h.GetNomenclature, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/serial_number/:serial_number/repairs_with_bitrix_deal",
		Summary:  "Получение отпусков в производство по серийному номеру",
		Tag:      handler.TagDeviceCard,
		Request:  handler.SerialNumberRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetRepairsWithBitrixDeals, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/serial_number/:serial_number/order",
		Summary:  "Получение заказа по серийному номеру",
		Tag:      handler.TagDeviceCard,
		Request:  handler.SerialNumberRequest{},
		Response: openapi.Object,
		Errors:   []int{http.StatusNotFound},
	}, handler.Handle(h.Handler, h.GetOrder, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/firms/:firm/repairs_order",
		Summary:  "Получение возвратов на ремонт по фирме",
		Tag:      handler.TagDeviceCard,
		Request:  handler.FirmRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetRepairOrdersByFirm, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/repair/:repair_id/repairs_order",
		Summary:  "Получение возврата на ремонт по отпуску в производство",
		Tag:      handler.TagDeviceCard,
		Request:  handler.RepairRequest{},
		Response: openapi.Object,
		Errors:   []int{http.StatusNotFound},
	}, handler.Handle(h.Handler, h.GetRepairOrderByRepair, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/repair/:repair_id",
		Summary:  "Получение информации о ремонте",
		Tag:      handler.TagDeviceCard,
		Request:  handler.RepairRequest{},
		Response: openapi.Object,
		Errors:   []int{http.StatusNotFound},
	}, handler.Handle(h.Handler, h.GetRepair, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/repairs_order/:repair_order_id/repairs",
		Summary:  "Получение отпусков в ремонт по возврату на ремонт",
		Tag:      handler.TagDeviceCard,
		Request:  handler.RepairOrderRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetRepairsByRepairOrder, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/repairs_order/:repair_order_id/repairs_with_bitrix_deal",
		Summary:  "Получение отпусков в ремонт со сделками битрикс по возврату на ремонт",
		Tag:      handler.TagDeviceCard,
		Request:  handler.RepairOrderRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetRepairsByRepairOrderWithBitrixDeals, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/repairs_order/:repair_order_id/bitrix_deal",
		Summary:  "Получение номеров сделок в битриксе",
		Tag:      handler.TagDeviceCard,
		Request:  handler.RepairOrderRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetBitrixDeals, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodPost,
		Path:     "/api/device_card/repairs_order/:repair_order_id/bitrix_deal",
		Summary:  "Добавление привязки номера сделки к заказу в ремонт",
		Tag:      handler.TagDeviceCard,
		Request:  handler.CreateBitrixDealRequest{},
		Response: openapi.ID,
		Errors:   []int{http.StatusNotAcceptable},
	}, handler.Handle(h.Handler, h.CreateBitrixDeal, http.StatusOK))

	r.add(openapi.Operation{
		Method:   http.MethodDelete,
		Path:     "/api/device_card/repairs_order/:repair_order_id/bitrix_deal/:deal_number",
		Summary:  "Удаление номера сделки привязоного к заказу в ремонт",
		Tag:      handler.TagDeviceCard,
		Request:  handler.BitrixDealLinkRequest{},
		Response: openapi.NoContent,
		Errors:   []int{http.StatusNotFound},
	}, handler.HandleNoContent(h.Handler, h.DeleteBitrixDeal, http.StatusNoContent))

	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/device_card/bitrix_deal/:deal_number/repairs_order",
		Summary:  "Получение возвратов на ремонт по номеру сделки в битрикс",
		Tag:      handler.TagDeviceCard,
		Request:  handler.BitrixDealRequest{},
		Response: openapi.List,
	}, handler.Handle(h.Handler, h.GetRepairOrdersByBitrixDeal, http.StatusOK))
}

func registerReportRoutes(r apiRoutes, h *handler.ReportHandler) {
	r.add(openapi.Operation{
		Method:   http.MethodGet,
		Path:     "/api/csv_reports/route_statistics",
		Summary:  "Выгрузка статистики маршрутов за заданный период",
		Tag:      handler.TagReports,
		Request:  handler.RouteStatisticsRequest{},
		Response: openapi.CSV,
	}, handler.HandleFile(h.Handler, h.RouteStatistics, http.StatusOK, service.RouteStatisticsFile, service.CSVContentType))
}
