package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legacyorders/internal/platform/apierr"
)

// APIError corps d'erreur renvoyé par l'API
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope {"error": {...}}
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError écrit l'enveloppe d'erreur. Le détail des erreurs 500 n'est pas exposé.
func RespondError(c *gin.Context, err *apierr.Error) {
	msg := err.Error()
	if err.Status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(err.Status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    err.Code,
		},
	})
}
