package handler

import (
	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/repository"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/service"
	"github.com/deppfellow/erp-gateway/internal/validation"
	"github.com/labstack/echo/v4"
)

// BOMHandler serves bills of materials.
type BOMHandler struct {
	Handler
	service *service.BOMService
}

func NewBOMHandler(s *server.Server, bomService *service.BOMService) *BOMHandler {
	return &BOMHandler{
		Handler: NewHandler(s),
		service: bomService,
	}
}

type BOMIDRequest struct {
	BOMID int64 `param:"bom_id" validate:"min=0" doc:"id спецификации"`
}

func (r *BOMIDRequest) Validate() error {
	return validate.Struct(r)
}

// ListBOMRequest holds the optional filters of the BOM list. Absent filters
// are passed to the database as NULL.
type ListBOMRequest struct {
	Descript     validation.OptionalString `query:"descript" bounds:"min=1,max=255" doc:"Описание спецификации"`
	StrID        validation.OptionalInt    `query:"str_id" bounds:"min=0" doc:"Участок за которым закреплена спецификация"`
	ContainedBOM validation.OptionalInt    `query:"contained_bom" bounds:"min=0" doc:"Спецификация содержащаяся в искомых"`
}

func (r *ListBOMRequest) Validate() error {
	var problems validation.CustomValidationErrors
	problems.CheckLength("descript", r.Descript, 1, 255)
	problems.CheckMin("str_id", r.StrID, 0)
	problems.CheckMin("contained_bom", r.ContainedBOM, 0)
	return problems.Err()
}

func (h *BOMHandler) GetInfo(c echo.Context, db database.Querier, req *BOMIDRequest) (*record.Row, error) {
	return h.service.GetInfo(c.Request().Context(), db, req.BOMID)
}

func (h *BOMHandler) GetStructure(c echo.Context, db database.Querier, req *BOMIDRequest) ([]*record.Row, error) {
	return h.service.GetStructure(c.Request().Context(), db, req.BOMID)
}

func (h *BOMHandler) GetTree(c echo.Context, db database.Querier, req *BOMIDRequest) ([]*record.Row, error) {
	return h.service.GetTree(c.Request().Context(), db, req.BOMID)
}

func (h *BOMHandler) List(c echo.Context, db database.Querier, req *ListBOMRequest) ([]*record.Row, error) {
	return h.service.List(c.Request().Context(), db, repository.BOMFilter{
		ContainedBOM: req.ContainedBOM.Arg(),
		Descript:     req.Descript.Arg(),
		StrID:        req.StrID.Arg(),
	})
}
