package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testValidator = New()

type bomIDRequest struct {
	BOMID int64 `param:"bom_id" validate:"min=0"`
}

func (r *bomIDRequest) Validate() error {
	return testValidator.Struct(r)
}

type listRequest struct {
	Descript OptionalString `query:"descript"`
	StrID    OptionalInt    `query:"str_id"`
}

func (r *listRequest) Validate() error {
	var problems CustomValidationErrors
	problems.CheckLength("descript", r.Descript, 1, 255)
	problems.CheckMin("str_id", r.StrID, 0)
	return problems.Err()
}

type periodRequest struct {
	DateStart Date `query:"date_start"`
	DateEnd   Date `query:"date_end"`
}

func (r *periodRequest) Validate() error {
	return nil
}

type createRequest struct {
	RepairOrderID int64 `param:"repair_order_id" validate:"min=0"`
	Number        int64 `json:"number" validate:"min=0"`
}

func (r *createRequest) Validate() error {
	return testValidator.Struct(r)
}

func newContext(method, target, body string) echo.Context {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func requireUnprocessable(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_PathParameter(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom/19818/info", "")
		c.SetParamNames("bom_id")
		c.SetParamValues("19818")

		req := &bomIDRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, int64(19818), req.BOMID)
	})

	t.Run("not an integer", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom/INVALID~ID/info", "")
		c.SetParamNames("bom_id")
		c.SetParamValues("INVALID~ID")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &bomIDRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "bom_id", httpErr.Errors[0].Field)
		assert.Equal(t, "must be a valid integer", httpErr.Errors[0].Error)
	})

	t.Run("negative", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom/-1/info", "")
		c.SetParamNames("bom_id")
		c.SetParamValues("-1")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &bomIDRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "bom_id", httpErr.Errors[0].Field)
		assert.Equal(t, "must be at least 0", httpErr.Errors[0].Error)
	})
}

func TestBindAndValidate_OptionalQueryParameters(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom", "")

		req := &listRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.False(t, req.Descript.Set)
		assert.Nil(t, req.Descript.Arg())
		assert.Nil(t, req.StrID.Arg())
	})

	t.Run("present", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom?descript="+url.QueryEscape("Плата")+"&str_id=0", "")

		req := &listRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, "Плата", req.Descript.Arg())
		assert.Equal(t, int64(0), req.StrID.Arg())
	})

	t.Run("empty description", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom?descript=", "")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &listRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "descript", httpErr.Errors[0].Field)
	})

	t.Run("description too long", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom?descript="+url.QueryEscape(strings.Repeat("я", 256)), "")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &listRequest{}))
		assert.Equal(t, "must not exceed 255 characters", httpErr.Errors[0].Error)
	})

	t.Run("malformed integer", func(t *testing.T) {
		c := newContext(http.MethodGet, "/api/bom?str_id=abc", "")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &listRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "str_id", httpErr.Errors[0].Field)
	})
}

func TestBindAndValidate_Dates(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := newContext(http.MethodGet, "/r?date_start=2024-01-01&date_end=2024-01-31", "")

		req := &periodRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, "2024-01-01", req.DateStart.String())
		assert.Equal(t, "2024-01-31", req.DateEnd.String())
	})

	t.Run("malformed", func(t *testing.T) {
		c := newContext(http.MethodGet, "/r?date_start=31.01.2024&date_end=2024-01-31", "")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &periodRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "date_start", httpErr.Errors[0].Field)
		assert.Equal(t, "must be a date in yyyy-MM-dd format", httpErr.Errors[0].Error)
	})

	t.Run("absent is NULL", func(t *testing.T) {
		c := newContext(http.MethodGet, "/r?date_start=2024-01-01", "")

		req := &periodRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.NotNil(t, req.DateStart.Arg())
		assert.Nil(t, req.DateEnd.Arg())
	})
}

func TestBindAndValidate_JSONBody(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := newContext(http.MethodPost, "/x", `{"number": 42}`)
		c.SetParamNames("repair_order_id")
		c.SetParamValues("7")

		req := &createRequest{}
		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, int64(7), req.RepairOrderID)
		assert.Equal(t, int64(42), req.Number)
	})

	t.Run("wrong type", func(t *testing.T) {
		c := newContext(http.MethodPost, "/x", `{"number": "forty-two"}`)
		c.SetParamNames("repair_order_id")
		c.SetParamValues("7")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &createRequest{}))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "number", httpErr.Errors[0].Field)
	})

	t.Run("negative number", func(t *testing.T) {
		c := newContext(http.MethodPost, "/x", `{"number": -3}`)
		c.SetParamNames("repair_order_id")
		c.SetParamValues("7")

		httpErr := requireUnprocessable(t, BindAndValidate(c, &createRequest{}))
		assert.Equal(t, "number", httpErr.Errors[0].Field)
	})
}
