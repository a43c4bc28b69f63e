package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"currency-converter/internal/catalog"
	"currency-converter/internal/entity"
	"currency-converter/internal/metrics"
	"currency-converter/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	args := m.Called(ctx, from, to, amount)
	return args.Get(0).(float64), args.Error(1)
}

func setupTestUsecase(t *testing.T, timeout time.Duration) (*ConverterUsecase, *mockConverter, *metrics.ConversionMetrics) {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(`[
		{"cc":"USD","symbol":"$","name":"United States dollar"},
		{"cc":"EUR","symbol":"€","name":"Euro"}
	]`))
	require.NoError(t, err)

	conv := new(mockConverter)
	m := metrics.NewConversionMetrics(prometheus.NewRegistry())
	logger, _ := test.NewNullLogger()
	return NewConverterUsecase(cat, conv, timeout, m, logger), conv, m
}

func TestConvert_Success(t *testing.T) {
	uc, conv, m := setupTestUsecase(t, 0)
	conv.On("Convert", mock.Anything, "USD", "EUR", 10.0).Return(9.3, nil)

	result, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 10})
	require.NoError(t, err)

	assert.Equal(t, "10 USD = 9.3 EUR", result.Text)
	assert.Equal(t, 9.3, result.Converted)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.OutcomeSuccess)))
	conv.AssertExpectations(t)
}

func TestConvert_NormalizesCodes(t *testing.T) {
	uc, conv, _ := setupTestUsecase(t, 0)
	conv.On("Convert", mock.Anything, "EUR", "USD", 2.5).Return(2.9, nil)

	result, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: " eur", TargetCode: "usd", Amount: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "2.5 EUR = 2.9 USD", result.Text)
}

func TestConvert_AppliesTimeout(t *testing.T) {
	uc, conv, _ := setupTestUsecase(t, time.Minute)
	conv.On("Convert", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Minute
	}), "USD", "EUR", 1.0).Return(0.9, nil)

	_, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 1})
	require.NoError(t, err)
	conv.AssertExpectations(t)
}

func TestConvert_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.ConversionRequest
		wantErr error
	}{
		{"negative", entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: -0.01}, entity.ErrInvalidAmount},
		{"nan", entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: math.NaN()}, entity.ErrInvalidAmount},
		{"unknown source", entity.ConversionRequest{SourceCode: "GBP", TargetCode: "EUR", Amount: 1}, catalog.ErrUnknownCurrency},
		{"unknown target", entity.ConversionRequest{SourceCode: "USD", TargetCode: "GBP", Amount: 1}, catalog.ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, conv, m := setupTestUsecase(t, 0)

			_, err := uc.Convert(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.OutcomeRejected)))
			conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestConvert_ZeroAmountAccepted(t *testing.T) {
	uc, conv, _ := setupTestUsecase(t, 0)
	conv.On("Convert", mock.Anything, "USD", "EUR", 0.0).Return(0.0, nil)

	result, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "0 USD = 0 EUR", result.Text)
}

func TestConvert_RatesUnavailable(t *testing.T) {
	uc, conv, m := setupTestUsecase(t, 0)
	conv.On("Convert", mock.Anything, "USD", "EUR", 1.0).Return(0.0, service.ErrRatesUnavailable)

	_, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 1})
	assert.ErrorIs(t, err, service.ErrRatesUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.OutcomeRatesUnavailable)))
}

func TestConvert_OtherError(t *testing.T) {
	uc, conv, m := setupTestUsecase(t, 0)
	expectedErr := errors.New("boom")
	conv.On("Convert", mock.Anything, "USD", "EUR", 1.0).Return(0.0, expectedErr)

	_, err := uc.Convert(context.Background(), entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: 1})
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.OutcomeError)))
}

func TestCurrencies(t *testing.T) {
	uc, _, _ := setupTestUsecase(t, 0)
	recs := uc.Currencies()
	require.Len(t, recs, 2)
	assert.Equal(t, "USD", recs[0].Code)
	assert.Equal(t, "EUR", recs[1].Code)
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		amount    float64
		converted float64
		want      string
	}{
		{10, 9.3, "10 USD = 9.3 EUR"},
		{0.1, 0.093, "0.1 USD = 0.093 EUR"},
		{1234567.5, 1148147.775, "1234567.5 USD = 1148147.775 EUR"},
	}

	for _, tt := range tests {
		req := entity.ConversionRequest{SourceCode: "USD", TargetCode: "EUR", Amount: tt.amount}
		assert.Equal(t, tt.want, FormatResult(req, tt.converted))
	}
}
