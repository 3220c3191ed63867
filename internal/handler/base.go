package handler

import (
	"context"
	"time"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/metrics"
	"github.com/deppfellow/erp-gateway/internal/middleware"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/deppfellow/erp-gateway/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler is the base handler type that holds shared application dependencies.
//
// Concrete handlers embed it so they reach config, logger and the session
// opener through *server.Server.
type Handler struct {
	server  *server.Server
	metrics *middleware.MetricsMiddleware
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s, metrics: middleware.NewMetricsMiddleware(s)}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc is a typed endpoint function. It receives the request's
// database session and the validated request and returns a response or an
// error.
//
// Req is a pointer type, e.g. *BOMIDRequest, because Echo's Bind needs a
// pointer to populate fields.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, db database.Querier, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint function for routes that return
// no body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, db database.Querier, req Req) error

// requestOf constrains PReq to be *Req and Validatable, so the pipeline can
// allocate a fresh request per call.
type requestOf[Req any] interface {
	*Req
	validation.Validatable
}

// ResponseHandler defines how a successful result is written and which
// observability attributes go with it.
type ResponseHandler interface {
	// Handle writes the HTTP response for the given result.
	Handle(c echo.Context, result interface{}) error

	// GetOperation returns an operation name used for structured logging.
	GetOperation() string

	// AddAttributes attaches New Relic attributes based on response type and/or result.
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is already set by tracing middleware (EnhanceTracing).
}

// NoContentResponseHandler writes responses with no body (typically 204).
type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is already set by tracing middleware
}

// FileResponseHandler writes a download. The handler result must be []byte.
type FileResponseHandler struct {
	status      int
	filename    string
	contentType string
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	data := result.([]byte)

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+h.filename)

	return c.Blob(h.status, h.contentType, data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn != nil {
		txn.AddAttribute("file.name", h.filename)
		txn.AddAttribute("file.content_type", h.contentType)
		if data, ok := result.([]byte); ok {
			txn.AddAttribute("file.size_bytes", len(data))
		}
	}
}

// handleRequest is the shared execution pipeline for all handlers:
//
//  1. bind + validate; a failure is a 422 and no database call is made
//  2. open a session with the request's Basic credentials; a refused login
//     is a 401
//  3. run the handler on the session
//  4. commit only when the handler succeeded
//  5. close the session whatever happened, panics included
//  6. write the response
//
// Each phase is logged and reported to New Relic.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	h Handler,
	req Req,
	handler func(c echo.Context, db database.Querier, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		responseHandler.AddAttributes(txn, nil)
	}

	loggerBuilder := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route)

	if fileHandler, ok := responseHandler.(FileResponseHandler); ok {
		loggerBuilder = loggerBuilder.
			Str("filename", fileHandler.filename).
			Str("content_type", fileHandler.contentType)
	}

	logger := loggerBuilder.Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := h.runInSession(c, &logger, func(db database.Querier) (interface{}, error) {
		return handler(c, db, req)
	})
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// runInSession opens the request's database session, runs fn on it and
// commits when fn succeeds. The session is closed on every path.
func (h Handler) runInSession(c echo.Context, logger *zerolog.Logger, fn func(db database.Querier) (interface{}, error)) (result interface{}, err error) {
	creds, ok := middleware.GetCredentials(c)
	if !ok {
		return nil, middleware.NewCredentialsError()
	}

	ctx := c.Request().Context()

	session, err := h.server.DB.Open(ctx, creds.User, creds.Password)
	if err != nil {
		h.metrics.RecordSession(metrics.SessionRejected, creds.User)
		logger.Warn().Err(err).Msg("database rejected the session")
		return nil, middleware.NewCredentialsError()
	}
	h.metrics.RecordSession(metrics.SessionOpened, creds.User)

	defer func() {
		// The request context may already be cancelled; closing must not be.
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to close database session")
		}
	}()

	result, err = fn(session)
	if err != nil {
		return nil, err
	}

	if err := session.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// Handle wraps a typed handler with validation, the database session,
// logging and tracing, and writes its result as JSON.
//
//	api.GET("/bom/:bom_id/info", handler.Handle(h.BOM.Handler, h.BOM.GetInfo, http.StatusOK))
func Handle[Req any, Res any, PReq requestOf[Req]](
	h Handler,
	handler HandlerFunc[PReq, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, h, PReq(new(Req)), func(c echo.Context, db database.Querier, req PReq) (interface{}, error) {
			return handler(c, db, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile wraps a handler that returns file bytes and sends them as an
// attachment.
func HandleFile[Req any, PReq requestOf[Req]](
	h Handler,
	handler HandlerFunc[PReq, []byte],
	status int,
	filename string,
	contentType string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, h, PReq(new(Req)), func(c echo.Context, db database.Querier, req PReq) (interface{}, error) {
			return handler(c, db, req)
		}, FileResponseHandler{
			status:      status,
			filename:    filename,
			contentType: contentType,
		})
	}
}

// HandleNoContent wraps a handler for endpoints that answer without a body.
func HandleNoContent[Req any, PReq requestOf[Req]](
	h Handler,
	handler HandlerFuncNoContent[PReq],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, h, PReq(new(Req)), func(c echo.Context, db database.Querier, req PReq) (interface{}, error) {
			err := handler(c, db, req)
			return nil, err
		}, NoContentResponseHandler{status: status})
	}
}
