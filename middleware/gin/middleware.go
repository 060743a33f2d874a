package ginmw

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/middleware"
)

// RejectDuplicateKeys answers 400 with an issues payload when a JSON body
// repeats an object key. The body is restored for later handlers.
func RejectDuplicateKeys() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok || len(bytes.TrimSpace(body)) == 0 {
			return
		}
		if err := formkit.DetectDuplicateKeys(body); err != nil {
			abort(c, err)
		}
	}
}

// ValidateData decodes an instance body against s, stores the resulting
// record in the request context and rejects invalid bodies with 400.
func ValidateData(s formkit.Schema, opts ...formkit.ValidateOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}
		rec, err := middleware.DecodeData(body, s, opts...)
		if err != nil {
			abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithRecord(c.Request.Context(), rec))
		c.Next()
	}
}

// GetRecord fetches the record stored by ValidateData.
func GetRecord(c *gin.Context) (formkit.Record, bool) {
	return middleware.RecordFromContext(c.Request.Context())
}

func readBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, err)
		return nil, false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, true
}

func abort(c *gin.Context, err error) {
	if iss, ok := formkit.AsIssues(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
}
