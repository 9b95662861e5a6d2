package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthHandler_Healthcheck(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		check    StorageCheck
		wantCode int
		wantBody string
		wantErrs int
	}{
		{name: "no storage check", backend: "memory", check: nil, wantCode: http.StatusOK, wantBody: `{"status":"ok","storage":"memory"}`},
		{
			name:     "store ready",
			backend:  "sqlite",
			check:    func(context.Context) error { return nil },
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","storage":"sqlite"}`,
		},
		{
			name:     "store down",
			backend:  "postgres",
			check:    func(context.Context) error { return errors.New("connection refused") },
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"unavailable","storage":"postgres","reason":"submission store not reachable"}`,
			wantErrs: 1,
		},
		{
			name:    "check sees a deadline",
			backend: "s3",
			check: func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					return errors.New("no deadline")
				}
				return nil
			},
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","storage":"s3"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.backend, tt.check)
			router := gin.New()
			var ginErrs int
			router.Use(func(c *gin.Context) {
				c.Next()
				ginErrs = len(c.Errors)
			})
			router.GET("/healthcheck", handler.Healthcheck)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthcheck", http.NoBody)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "no-cache, no-store, max-age=0, must-revalidate", w.Header().Get("Cache-Control"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantErrs, ginErrs)
		})
	}
}
