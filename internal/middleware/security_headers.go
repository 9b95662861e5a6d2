package middleware

import (
	"github.com/gin-gonic/gin"
)

var securityHeaders = map[string]string{
	"X-Frame-Options":                   "DENY",
	"X-Content-Type-Options":            "nosniff",
	"Referrer-Policy":                   "strict-origin-when-cross-origin",
	"Permissions-Policy":                "camera=(), microphone=(), geolocation=(), interest-cohort=()",
	"X-Permitted-Cross-Domain-Policies": "none",
	"Cache-Control":                     "no-store, no-cache, must-revalidate, private",
	"Pragma":                            "no-cache",
}

// SecurityHeadersMiddleware adds browser hardening headers to every response.
// Form payloads contain student email addresses, so nothing is cacheable.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range securityHeaders {
			c.Header(name, value)
		}
		c.Next()
	}
}
