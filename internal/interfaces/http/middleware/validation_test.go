package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipdesk/backend/internal/interfaces/http/dto"
)

type validationInput struct {
	Account  string   `json:"account" binding:"required,account"`
	OrderIDs []string `json:"order_ids" binding:"required,min=1,max=2"`
	Note     string   `json:"note" binding:"omitempty,max=5"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req validationInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postValidation(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-val")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func detailsByField(resp dto.Response) map[string]string {
	out := make(map[string]string)
	if resp.Error == nil {
		return out
	}
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}

func TestValidation_ValidInput(t *testing.T) {
	w, resp := postValidation(t, newValidationRouter(), `{"account":"shop-a","order_ids":["A1"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestValidation_ReportsFieldsByJSONName(t *testing.T) {
	w, resp := postValidation(t, newValidationRouter(), `{"order_ids":[],"note":"too long"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-val", resp.Error.RequestID)

	details := detailsByField(resp)
	assert.Equal(t, "This field is required", details["account"])
	assert.Equal(t, "Must contain at least 1 item(s)", details["order_ids"])
	assert.Equal(t, "Must be at most 5 characters", details["note"])
}

func TestValidation_AccountTag(t *testing.T) {
	tests := []struct {
		account string
		valid   bool
	}{
		{"shop-a", true},
		{"Shop_1.eu", true},
		{"-leading-dash", false},
		{"has space", false},
		{strings.Repeat("a", 65), false},
	}
	router := newValidationRouter()
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			body, err := json.Marshal(map[string]any{"account": tt.account, "order_ids": []string{"A1"}})
			require.NoError(t, err)

			w, resp := postValidation(t, router, string(body))
			if tt.valid {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Must be a valid account name", detailsByField(resp)["account"])
		})
	}
}

func TestValidation_TooManyItems(t *testing.T) {
	_, resp := postValidation(t, newValidationRouter(), `{"account":"shop-a","order_ids":["A1","A2","A3"]}`)
	assert.Equal(t, "Must contain at most 2 item(s)", detailsByField(resp)["order_ids"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
