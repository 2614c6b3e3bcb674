package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/http/handlers"
)

type bindTarget struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/bind", func(c *gin.Context) {
		var req bindTarget

		if !handlers.BindJSON(c, &req) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantField      string
	}{
		{
			name:           "valid",
			body:           `{"name": "alice", "password": "pw"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_field",
			body:           `{"name": "alice"}`,
			wantStatusCode: http.StatusBadRequest,
			wantField:      "password",
		},
		{
			name:           "invalid_syntax",
			body:           `{"name": `,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "wrong_type",
			body:           `{"name": 42, "password": "pw"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	r := bindRouter()

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantField == "" {
				return
			}

			var resp struct {
				Details struct {
					Fields []handlers.FieldError `json:"fields"`
				} `json:"details"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if len(resp.Details.Fields) != 1 || resp.Details.Fields[0].Field != tt.wantField {
				t.Fatalf("unexpected field errors: %s", w.Body.String())
			}
		})
	}
}
