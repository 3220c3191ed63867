// Package openapi builds the OpenAPI 3 document served on /openapi.json.
//
// Operations are described by the request structs the handlers bind:
// `param` fields become path parameters, `query` fields query parameters
// and `json` fields the request body. `validate` tags add bounds and a
// `doc` tag, when present, becomes the parameter description.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/deppfellow/erp-gateway/internal/validation"
	"github.com/getkin/kin-openapi/openapi3"
)

// BasicAuth is the name of the security scheme every /api operation uses.
const BasicAuth = "basicAuth"

// Response describes what an operation returns on success.
type Response int

const (
	// Object is a single result row.
	Object Response = iota
	// List is an array of result rows.
	List
	// ID is a bare integer.
	ID
	// CSV is a text/csv attachment.
	CSV
	// NoContent is an empty 204.
	NoContent
)

// Operation is one documented route.
type Operation struct {
	Method  string
	Path    string // echo syntax, e.g. /api/bom/:bom_id/info
	Summary string
	Tag     string

	// Request is a value (or pointer) of the request struct the handler binds.
	Request any
	// Response is the success shape.
	Response Response
	// Errors lists additional documented error statuses besides 401, 422
	// and 500, e.g. http.StatusNotFound.
	Errors []int
}

// Tag groups operations in the rendered docs.
type Tag struct {
	Name        string
	Description string
}

// Document collects operations and renders them as an OpenAPI 3 document.
// It is safe to add operations while the document is being rendered.
type Document struct {
	mu          sync.RWMutex
	title       string
	version     string
	description string
	tags        []Tag
	ops         []Operation
}

// NewDocument returns an empty document.
func NewDocument(title, version, description string, tags ...Tag) *Document {
	return &Document{title: title, version: version, description: description, tags: tags}
}

// Add records op.
func (d *Document) Add(op Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, op)
}

// Operations returns a copy of the recorded operations.
func (d *Document) Operations() []Operation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Operation(nil), d.ops...)
}

var echoParam = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// Path converts an echo route path to an OpenAPI path template.
func Path(echoPath string) string {
	return echoParam.ReplaceAllString(echoPath, "{$1}")
}

// Build renders the document.
func (d *Document) Build() (*openapi3.T, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       d.title,
			Version:     d.version,
			Description: d.description,
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Error": &openapi3.SchemaRef{Value: errorSchema()},
			},
			SecuritySchemes: openapi3.SecuritySchemes{
				BasicAuth: &openapi3.SecuritySchemeRef{
					Value: openapi3.NewSecurityScheme().WithType("http").WithScheme("basic"),
				},
			},
		},
	}

	for _, tag := range d.tags {
		spec.Tags = append(spec.Tags, &openapi3.Tag{Name: tag.Name, Description: tag.Description})
	}

	for _, op := range d.ops {
		if err := addOperation(spec, op); err != nil {
			return nil, fmt.Errorf("failed to document %s %s: %w", op.Method, op.Path, err)
		}
	}

	return spec, nil
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	spec, err := d.Build()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}

	return data, nil
}

func addOperation(spec *openapi3.T, op Operation) error {
	path := Path(op.Path)
	pathItem := spec.Paths.Find(path)
	if pathItem == nil {
		pathItem = &openapi3.PathItem{}
		spec.Paths.Set(path, pathItem)
	}

	operation := &openapi3.Operation{
		Summary:   op.Summary,
		Responses: &openapi3.Responses{},
		Security:  openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(BasicAuth)),
	}
	if op.Tag != "" {
		operation.Tags = []string{op.Tag}
	}

	if op.Request != nil {
		requestType := reflect.TypeOf(op.Request)
		for requestType.Kind() == reflect.Ptr {
			requestType = requestType.Elem()
		}
		if requestType.Kind() != reflect.Struct {
			return fmt.Errorf("request must be a struct, got %s", requestType)
		}

		operation.Parameters = parameters(requestType)
		if body := requestBody(requestType); body != nil {
			operation.RequestBody = &openapi3.RequestBodyRef{Value: body}
		}
	}

	setSuccess(operation, op.Response)

	errorStatuses := append([]int{http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusInternalServerError}, op.Errors...)
	for _, status := range errorStatuses {
		description := http.StatusText(status)
		operation.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &description,
				Content: openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{
					Ref:   "#/components/schemas/Error",
					Value: errorSchema(),
				}),
			},
		})
	}

	switch op.Method {
	case http.MethodGet:
		pathItem.Get = operation
	case http.MethodPost:
		pathItem.Post = operation
	case http.MethodPut:
		pathItem.Put = operation
	case http.MethodPatch:
		pathItem.Patch = operation
	case http.MethodDelete:
		pathItem.Delete = operation
	default:
		return fmt.Errorf("unsupported method %q", op.Method)
	}

	return nil
}

func setSuccess(operation *openapi3.Operation, kind Response) {
	status := http.StatusOK
	description := "Success"
	var content openapi3.Content

	switch kind {
	case Object:
		content = openapi3.NewContentWithJSONSchema(rowSchema())
	case List:
		content = openapi3.NewContentWithJSONSchema(openapi3.NewArraySchema().WithItems(rowSchema()))
	case ID:
		content = openapi3.NewContentWithJSONSchema(openapi3.NewInt64Schema())
	case CSV:
		content = openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/csv"})
		description = "CSV attachment"
	case NoContent:
		status = http.StatusNoContent
		description = "No Content"
	}

	operation.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{
		Value: &openapi3.Response{Description: &description, Content: content},
	})
}

// rowSchema is a result row: its columns depend on the query.
func rowSchema() *openapi3.Schema {
	hasAdditional := true
	schema := openapi3.NewObjectSchema()
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: &hasAdditional}
	return schema
}

func errorSchema() *openapi3.Schema {
	fieldError := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("error", openapi3.NewStringSchema())

	return openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewIntegerSchema()).
		WithProperty("override", openapi3.NewBoolSchema()).
		WithProperty("errors", openapi3.NewArraySchema().WithItems(fieldError))
}

var (
	optionalIntType    = reflect.TypeOf(validation.OptionalInt{})
	optionalStringType = reflect.TypeOf(validation.OptionalString{})
	dateType           = reflect.TypeOf(validation.Date{})
)

func parameters(requestType reflect.Type) openapi3.Parameters {
	var params openapi3.Parameters

	for i := 0; i < requestType.NumField(); i++ {
		field := requestType.Field(i)
		if !field.IsExported() {
			continue
		}

		var param *openapi3.Parameter
		if name := tagName(field, "param"); name != "" {
			param = openapi3.NewPathParameter(name)
		} else if name := tagName(field, "query"); name != "" {
			param = openapi3.NewQueryParameter(name)
		} else {
			continue
		}

		param.Description = field.Tag.Get("doc")
		param.Schema = &openapi3.SchemaRef{Value: fieldSchema(field)}
		params = append(params, &openapi3.ParameterRef{Value: param})
	}

	return params
}

func requestBody(requestType reflect.Type) *openapi3.RequestBody {
	schema := openapi3.NewObjectSchema()
	found := false

	for i := 0; i < requestType.NumField(); i++ {
		field := requestType.Field(i)
		name := tagName(field, "json")
		if !field.IsExported() || name == "" {
			continue
		}

		found = true
		schema.WithProperty(name, fieldSchema(field))
		if hasRule(field, "required") {
			schema.Required = append(schema.Required, name)
		}
	}

	if !found {
		return nil
	}
	return openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(schema)
}

func fieldSchema(field reflect.StructField) *openapi3.Schema {
	t := field.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var schema *openapi3.Schema
	switch {
	case t == optionalIntType:
		schema = openapi3.NewInt64Schema()
	case t == optionalStringType:
		schema = openapi3.NewStringSchema()
	case t == dateType:
		schema = openapi3.NewStringSchema().WithFormat("date")
	default:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			schema = openapi3.NewInt64Schema()
		case reflect.Float32, reflect.Float64:
			schema = openapi3.NewFloat64Schema()
		case reflect.Bool:
			schema = openapi3.NewBoolSchema()
		default:
			schema = openapi3.NewStringSchema()
		}
	}

	applyBounds(schema, field)
	return schema
}

// applyBounds copies min/max rules from the validate and bounds tags.
// bounds carries limits that are checked in code rather than by tags.
func applyBounds(schema *openapi3.Schema, field reflect.StructField) {
	rules := strings.Split(field.Tag.Get("validate"), ",")
	rules = append(rules, strings.Split(field.Tag.Get("bounds"), ",")...)

	for _, rule := range rules {
		key, value, ok := strings.Cut(strings.TrimSpace(rule), "=")
		if !ok || (key != "min" && key != "max") {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}

		isString := schema.Type != nil && schema.Type.Is("string")
		switch {
		case key == "min" && isString:
			schema.WithMinLength(n)
		case key == "max" && isString:
			schema.WithMaxLength(n)
		case key == "min":
			schema.WithMin(float64(n))
		case key == "max":
			schema.WithMax(float64(n))
		}
	}
}

func tagName(field reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
	if name == "-" {
		return ""
	}
	return name
}

func hasRule(field reflect.StructField, rule string) bool {
	for _, r := range strings.Split(field.Tag.Get("validate"), ",") {
		if strings.TrimSpace(r) == rule {
			return true
		}
	}
	return false
}
