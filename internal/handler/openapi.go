package handler

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/deppfellow/erp-gateway/internal/openapi"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed static/openapi.html
var openAPIUI string

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// API tags.
const (
	TagBOM        = "bom"
	TagDeviceCard = "device_card"
	TagReports    = "csv_reports"
)

// OpenAPIHandler serves the generated OpenAPI document and a docs UI for it.
//
// The router adds an operation to the document for every /api route it
// registers, so the document always matches the routes being served.
type OpenAPIHandler struct {
	Handler
	document *openapi.Document
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		document: openapi.NewDocument(
			"ERP Gateway",
			APIVersion,
			"Read access to the ERP database on behalf of the caller. "+
				"Every /api request authenticates against the database with its Basic credentials.",
			openapi.Tag{Name: TagBOM, Description: "Спецификации"},
			openapi.Tag{Name: TagDeviceCard, Description: "Карточка устройства"},
			openapi.Tag{Name: TagReports, Description: "Выгрузка отчетов"},
		),
	}
}

// Document returns the document the router fills in.
func (h *OpenAPIHandler) Document() *openapi.Document {
	return h.document
}

// ServeSpec writes the OpenAPI document as JSON.
func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	data, err := h.document.JSON()
	if err != nil {
		return fmt.Errorf("failed to render OpenAPI document: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSONBlob(http.StatusOK, data)
}

// ServeOpenAPIUI serves the docs page. Cache-Control is "no-cache" so a
// redeploy is visible immediately.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTML(http.StatusOK, openAPIUI); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
