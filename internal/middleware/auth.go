package middleware

import (
	"time"

	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	// CredentialsKey stores the caller's database credentials in the Echo
	// context.
	CredentialsKey = "db_credentials"

	// InvalidCredentialsMessage is returned with every 401.
	InvalidCredentialsMessage = "Incorrect email or password"

	// BasicChallenge is sent in WWW-Authenticate with every 401.
	BasicChallenge = "Basic"
)

// Credentials are the Basic credentials of a request. They are used as the
// database login; the gateway has no user store of its own.
type Credentials struct {
	User     string
	Password string
}

// AuthMiddleware holds the app Server so middleware can access shared deps
// like Logger and Config.
type AuthMiddleware struct {
	server *server.Server
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireBasicAuth is an Echo middleware that demands HTTP Basic
// credentials.
//
// It does not check them: the database does that when the handler opens
// the request's session, after the parameters are validated. A missing or
// malformed Authorization header is rejected here with a 401; the global
// error handler adds the WWW-Authenticate challenge.
//
// On success it stores:
//   - the credentials under CredentialsKey
//   - the login under UserIDKey, for logs and traces
func (auth *AuthMiddleware) RequireBasicAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		user, password, ok := c.Request().BasicAuth()
		if !ok || user == "" {
			GetLogger(c).Warn().
				Str("function", "RequireBasicAuth").
				Dur("duration", time.Since(start)).
				Msg("missing basic credentials")

			return NewCredentialsError()
		}

		c.Set(CredentialsKey, Credentials{User: user, Password: password})
		c.Set(UserIDKey, user)

		// The request logger was built before the user was known.
		logger := GetLogger(c).With().Str("db_user", user).Logger()
		c.Set(LoggerKey, &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}

// NewCredentialsError is the 401 for missing or rejected credentials. Its
// action tells the client to ask the operator to log in again.
func NewCredentialsError() *errs.HTTPError {
	return errs.NewUnauthorizedError(InvalidCredentialsMessage, false).WithAction(&errs.Action{
		Type:    errs.ActionTypeAuthenticate,
		Message: "Enter your ERP database login and password",
		Value:   BasicChallenge,
	})
}

// GetCredentials returns the credentials stored by RequireBasicAuth.
func GetCredentials(c echo.Context) (Credentials, bool) {
	creds, ok := c.Get(CredentialsKey).(Credentials)
	return creds, ok
}
