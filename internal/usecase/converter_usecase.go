package usecase

import (
	"context"
	"currency-converter/internal/catalog"
	"currency-converter/internal/entity"
	"currency-converter/internal/metrics"
	"currency-converter/internal/service"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ConverterUsecase struct {
	catalog   *catalog.Catalog
	converter service.Converter
	timeout   time.Duration
	metrics   *metrics.ConversionMetrics
	logger    *logrus.Logger
}

func NewConverterUsecase(
	cat *catalog.Catalog,
	converter service.Converter,
	timeout time.Duration,
	m *metrics.ConversionMetrics,
	logger *logrus.Logger,
) *ConverterUsecase {
	return &ConverterUsecase{
		catalog:   cat,
		converter: converter,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *ConverterUsecase) Currencies() []entity.CurrencyRecord {
	return uc.catalog.Records()
}

// Convert validates req against the catalog before calling out, so only
// known codes and finite non-negative amounts reach the rate source.
func (uc *ConverterUsecase) Convert(ctx context.Context, req entity.ConversionRequest) (*entity.ConversionResult, error) {
	req.SourceCode = strings.ToUpper(strings.TrimSpace(req.SourceCode))
	req.TargetCode = strings.ToUpper(strings.TrimSpace(req.TargetCode))

	if err := uc.validate(req); err != nil {
		uc.logger.Warnf("Rejected conversion request %s->%s: %v", req.SourceCode, req.TargetCode, err)
		uc.metrics.ObserveConversion(metrics.OutcomeRejected, 0)
		return nil, err
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	started := time.Now()
	converted, err := uc.converter.Convert(ctx, req.SourceCode, req.TargetCode, req.Amount)
	elapsed := time.Since(started)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, service.ErrRatesUnavailable) {
			outcome = metrics.OutcomeRatesUnavailable
		}
		uc.metrics.ObserveConversion(outcome, elapsed)
		uc.logger.WithError(err).Errorf("Failed to convert %v %s to %s", req.Amount, req.SourceCode, req.TargetCode)
		return nil, err
	}
	uc.metrics.ObserveConversion(metrics.OutcomeSuccess, elapsed)

	result := &entity.ConversionResult{
		Request:   req,
		Converted: converted,
		Text:      FormatResult(req, converted),
	}
	uc.logger.Infof("Converted: %s", result.Text)
	return result, nil
}

func (uc *ConverterUsecase) validate(req entity.ConversionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !uc.catalog.Contains(req.SourceCode) {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownCurrency, req.SourceCode)
	}
	if !uc.catalog.Contains(req.TargetCode) {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownCurrency, req.TargetCode)
	}
	return nil
}

// FormatResult renders "{amount} {source} = {converted} {target}" with the
// shortest decimal form of each number, e.g. "10 USD = 9.3 EUR".
func FormatResult(req entity.ConversionRequest, converted float64) string {
	return fmt.Sprintf("%s %s = %s %s",
		decimal.NewFromFloat(req.Amount).String(),
		req.SourceCode,
		decimal.NewFromFloat(converted).String(),
		req.TargetCode,
	)
}
