// Package handler is the HTTP layer, the first entry point after the router.
//
// It binds and validates requests using the validation package, opens the
// request's database session, calls the service layer and writes the
// response. Request types live next to the handlers that bind them.
package handler

import "github.com/deppfellow/erp-gateway/internal/validation"

// validate is shared by every request type.
var validate = validation.New()
