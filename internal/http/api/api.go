package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// APIError is a handler failure: the HTTP status and the message put in
// the envelope's "error" field.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func Errorf(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Envelope wraps every JSON response.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			Fail(ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		result, apiErr := h(ctx, user)
		respond(ctx, result, apiErr)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		respond(ctx, result, apiErr)
	}
}

func respond(ctx *gin.Context, result any, apiErr *APIError) {
	if apiErr != nil {
		Fail(ctx, apiErr.Code, apiErr.Message)
		return
	}
	ctx.JSON(http.StatusOK, Envelope{OK: true, Data: result})
}

// Fail aborts with an error envelope. Middleware uses it too, so every
// response has the same shape.
func Fail(ctx *gin.Context, code int, message string) {
	ctx.AbortWithStatusJSON(code, Envelope{OK: false, Error: message})
}
