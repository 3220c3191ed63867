package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/deppfellow/erp-gateway/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bomIDRequest struct {
	BOMID int64 `param:"bom_id" validate:"min=0" doc:"id спецификации"`
}

type bomListRequest struct {
	Descript validation.OptionalString `query:"descript" bounds:"min=1,max=255"`
	StrID    validation.OptionalInt    `query:"str_id" bounds:"min=0"`
}

type periodRequest struct {
	DateStart validation.Date `query:"date_start"`
}

type linkRequest struct {
	RepairOrderID int64  `param:"repair_order_id" validate:"min=0"`
	Number        *int64 `json:"number" validate:"required,min=0"`
}

type orderRequest struct {
	RepairOrderID int64 `param:"repair_order_id" validate:"min=0"`
}

type unlinkRequest struct {
	RepairOrderID int64 `param:"repair_order_id" validate:"min=0"`
	DealNumber    int64 `param:"deal_number" validate:"min=0"`
}

func testDocument() *Document {
	doc := NewDocument("ERP gateway", "1.0.0", "test", Tag{Name: "bom", Description: "Спецификации"})
	doc.Add(Operation{Method: http.MethodGet, Path: "/api/bom/:bom_id/info", Summary: "info", Tag: "bom", Request: bomIDRequest{}, Response: Object, Errors: []int{http.StatusNotFound}})
	doc.Add(Operation{Method: http.MethodGet, Path: "/api/bom", Summary: "list", Tag: "bom", Request: &bomListRequest{}, Response: List})
	doc.Add(Operation{Method: http.MethodGet, Path: "/api/csv_reports/route_statistics", Request: periodRequest{}, Response: CSV})
	doc.Add(Operation{Method: http.MethodGet, Path: "/api/device_card/repairs_order/:repair_order_id/bitrix_deal", Request: orderRequest{}, Response: List})
	doc.Add(Operation{Method: http.MethodPost, Path: "/api/device_card/repairs_order/:repair_order_id/bitrix_deal", Request: linkRequest{}, Response: ID, Errors: []int{http.StatusNotAcceptable}})
	doc.Add(Operation{Method: http.MethodDelete, Path: "/api/device_card/repairs_order/:repair_order_id/bitrix_deal/:deal_number", Request: unlinkRequest{}, Response: NoContent, Errors: []int{http.StatusNotFound}})
	return doc
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/api/bom/{bom_id}/info", Path("/api/bom/:bom_id/info"))
	assert.Equal(t, "/api/x/{a}/y/{b}", Path("/api/x/:a/y/:b"))
	assert.Equal(t, "/status", Path("/status"))
}

func TestDocument_Build(t *testing.T) {
	spec, err := testDocument().Build()
	require.NoError(t, err)
	require.NoError(t, spec.Validate(context.Background()))

	info := spec.Paths.Find("/api/bom/{bom_id}/info")
	require.NotNil(t, info)
	require.NotNil(t, info.Get)
	assert.Equal(t, []string{"bom"}, info.Get.Tags)
	require.Len(t, info.Get.Parameters, 1)

	param := info.Get.Parameters[0].Value
	assert.Equal(t, "bom_id", param.Name)
	assert.Equal(t, "path", param.In)
	assert.True(t, param.Required)
	assert.Equal(t, "id спецификации", param.Description)
	require.NotNil(t, param.Schema.Value.Min)
	assert.Equal(t, 0.0, *param.Schema.Value.Min)

	assert.NotNil(t, info.Get.Responses.Value("200"))
	assert.NotNil(t, info.Get.Responses.Value("404"))
	assert.NotNil(t, info.Get.Responses.Value("401"))
	assert.NotNil(t, info.Get.Responses.Value("422"))

	errSchema := info.Get.Responses.Value("404").Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/Error", errSchema.Ref)
	require.NotNil(t, errSchema.Value)
	assert.Contains(t, errSchema.Value.Properties, "message")
}

func TestDocument_QueryParameters(t *testing.T) {
	spec, err := testDocument().Build()
	require.NoError(t, err)

	list := spec.Paths.Find("/api/bom").Get
	require.Len(t, list.Parameters, 2)

	descript := list.Parameters[0].Value
	assert.Equal(t, "descript", descript.Name)
	assert.Equal(t, "query", descript.In)
	assert.False(t, descript.Required)
	assert.Equal(t, uint64(1), descript.Schema.Value.MinLength)
	require.NotNil(t, descript.Schema.Value.MaxLength)
	assert.Equal(t, uint64(255), *descript.Schema.Value.MaxLength)

	report := spec.Paths.Find("/api/csv_reports/route_statistics").Get
	require.Len(t, report.Parameters, 1)
	assert.Equal(t, "date", report.Parameters[0].Value.Schema.Value.Format)
	assert.NotNil(t, report.Responses.Value("200").Value.Content.Get("text/csv"))
}

func TestDocument_BodyAndMethods(t *testing.T) {
	spec, err := testDocument().Build()
	require.NoError(t, err)

	link := spec.Paths.Find("/api/device_card/repairs_order/{repair_order_id}/bitrix_deal")
	require.NotNil(t, link.Get)
	require.NotNil(t, link.Post)

	body := link.Post.RequestBody.Value
	require.NotNil(t, body)
	schema := body.Content.Get("application/json").Schema.Value
	assert.Contains(t, schema.Properties, "number")
	assert.Equal(t, []string{"number"}, schema.Required)
	assert.NotNil(t, link.Post.Responses.Value("406"))

	unlink := spec.Paths.Find("/api/device_card/repairs_order/{repair_order_id}/bitrix_deal/{deal_number}")
	require.NotNil(t, unlink.Delete)
	assert.NotNil(t, unlink.Delete.Responses.Value("204"))
	assert.Nil(t, unlink.Delete.RequestBody)
}

func TestDocument_JSON(t *testing.T) {
	data, err := testDocument().JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])

	components := decoded["components"].(map[string]any)
	schemes := components["securitySchemes"].(map[string]any)
	assert.Contains(t, schemes, BasicAuth)
}

func TestDocument_RejectsUnknownMethod(t *testing.T) {
	doc := NewDocument("x", "1", "")
	doc.Add(Operation{Method: "TRACE", Path: "/x", Response: Object})

	_, err := doc.Build()

	assert.Error(t, err)
}
