package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/pkg/response"
)

const APIKeyHeader = "x-api-key"

// APIKey rejects requests whose x-api-key header does not equal expected.
// An empty expected key disables the check.
func APIKey(expected string) gin.HandlerFunc {
	want := []byte(expected)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			response.Unauthorized(c, "invalid or missing api key")
			return
		}
		c.Next()
	}
}
