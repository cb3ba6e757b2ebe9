package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindingSample struct {
	Name      string `json:"product_name" binding:"required,max=5"`
	Amount    int    `json:"supply_amount" binding:"required,gt=0"`
	OrderDate string `json:"order_date" binding:"omitempty,isodate"`
}

func bindSample(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var sample bindingSample
	return c.ShouldBindJSON(&sample)
}

func TestDescribeBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reports json field names", func(t *testing.T) {
		err := bindSample(t, `{"supply_amount": 0}`)
		require.Error(t, err)
		msg := DescribeBindingError(err)
		assert.Contains(t, msg, "product_name: This field is required")
		assert.Contains(t, msg, "supply_amount: This field is required")
	})

	t.Run("string length", func(t *testing.T) {
		err := bindSample(t, `{"product_name": "고구마감자당근", "supply_amount": 1}`)
		require.Error(t, err)
		assert.Equal(t, "product_name: Must be at most 5 characters", DescribeBindingError(err))
	})

	t.Run("isodate", func(t *testing.T) {
		require.NoError(t, bindSample(t, `{"product_name": "감자", "supply_amount": 1, "order_date": "2024-06-15"}`))

		err := bindSample(t, `{"product_name": "감자", "supply_amount": 1, "order_date": "2024-6-15"}`)
		require.Error(t, err)
		assert.Equal(t, "order_date: Must be a date in YYYY-MM-DD format", DescribeBindingError(err))
	})

	t.Run("malformed json keeps decoder message", func(t *testing.T) {
		err := bindSample(t, `{`)
		require.Error(t, err)
		assert.NotEmpty(t, DescribeBindingError(err))
	})
}
