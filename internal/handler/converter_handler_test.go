package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"currency-converter/internal/catalog"
	"currency-converter/internal/entity"
	"currency-converter/internal/service"
	"currency-converter/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConversionUsecase struct {
	mock.Mock
}

func (m *mockConversionUsecase) Convert(ctx context.Context, req entity.ConversionRequest) (*entity.ConversionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConversionResult), args.Error(1)
}

func (m *mockConversionUsecase) Currencies() []entity.CurrencyRecord {
	args := m.Called()
	return args.Get(0).([]entity.CurrencyRecord)
}

var testStyle = config.Style{FontFamily: "Arial", FontSize: 12, SelectorWidth: 300, Title: "Currency Converter"}

var testCurrencies = []entity.CurrencyRecord{
	{Code: "USD", Symbol: "$", Name: "United States dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
}

func setupTestHandler() (*ConverterHandler, *mockConversionUsecase, *logrus.Logger, *test.Hook) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(mockConversionUsecase)
	logger, hook := test.NewNullLogger()
	handler := NewConverterHandler(mockUsecase, testStyle, logger)
	return handler, mockUsecase, logger, hook
}

func TestConvert_Success(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	req := entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 10}
	mockUsecase.On("Convert", mock.Anything, req).Return(&entity.ConversionResult{
		Request:   req,
		Converted: 9.3,
		Text:      "10 USD = 9.3 EUR",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/convert?from=USD&to=EUR&amount=10", nil)

	handler.Convert(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, ConvertResponse{From: "USD", To: "EUR", Amount: 10, Converted: 9.3, Text: "10 USD = 9.3 EUR"}, response)

	mockUsecase.AssertExpectations(t)
}

func TestConvert_ZeroAmount(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()

	req := entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 0}
	mockUsecase.On("Convert", mock.Anything, req).Return(&entity.ConversionResult{Request: req, Text: "0 USD = 0 EUR"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/convert?from=USD&to=EUR&amount=0", nil)

	handler.Convert(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsecase.AssertExpectations(t)
}

func TestConvert_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing from", "to=EUR&amount=1"},
		{"missing amount", "from=USD&to=EUR"},
		{"long code", "from=USDT&to=EUR&amount=1"},
		{"negative amount", "from=USD&to=EUR&amount=-1"},
		{"not a number", "from=USD&to=EUR&amount=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockUsecase, _, _ := setupTestHandler()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("GET", "/api/convert?"+tt.query, nil)

			handler.Convert(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "invalid_request", response.Error)
			mockUsecase.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
		})
	}
}

func TestConvert_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"rates unavailable", fmt.Errorf("%w: feed down", service.ErrRatesUnavailable), http.StatusServiceUnavailable, "rates_unavailable"},
		{"unknown in catalog", fmt.Errorf("%w: \"GBP\"", catalog.ErrUnknownCurrency), http.StatusBadRequest, "invalid_request"},
		{"invalid amount", entity.ErrInvalidAmount, http.StatusBadRequest, "invalid_request"},
		{"not quoted", fmt.Errorf("%w: XAU", service.ErrUnknownCurrency), http.StatusUnprocessableEntity, "not_quoted"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockUsecase, _, _ := setupTestHandler()
			mockUsecase.On("Convert", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("GET", "/api/convert?from=USD&to=EUR&amount=1", nil)

			handler.Convert(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantError, response.Error)
		})
	}
}

func TestConvert_UnavailableMessage(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()
	mockUsecase.On("Convert", mock.Anything, mock.Anything).Return(nil, service.ErrRatesUnavailable)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/convert?from=USD&to=EUR&amount=1", nil)

	handler.Convert(c)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "It seems that you do not have an internet connection", response.Message)
}

func TestListCurrencies(t *testing.T) {
	handler, mockUsecase, _, _ := setupTestHandler()
	mockUsecase.On("Currencies").Return(testCurrencies)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/currencies", nil)

	handler.ListCurrencies(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []CurrencyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []CurrencyResponse{
		{Code: "USD", Symbol: "$", Name: "United States dollar", Label: "USD (United States dollar)"},
		{Code: "EUR", Symbol: "€", Name: "Euro", Label: "EUR (Euro)"},
	}, response)
}

func TestRouter(t *testing.T) {
	handler, mockUsecase, logger, hook := setupTestHandler()
	mockUsecase.On("Currencies").Return(testCurrencies)

	r := NewRouter(handler, prometheus.NewRegistry(), []string{"http://localhost:8080"}, logger)

	t.Run("index", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "<title>Currency Converter</title>")
		assert.Contains(t, body, `<option value="USD">USD (United States dollar)</option>`)
		assert.Contains(t, body, `<option value="EUR">EUR (Euro)</option>`)
		assert.Contains(t, body, "width: 300px")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "abc", hook.LastEntry().Data["request_id"])
	})
}
