package service

import (
	"context"
	"currency-converter/internal/adapter/cbr"
	"currency-converter/internal/entity"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// BaseCurrency is the currency every feed quote is expressed in.
const BaseCurrency = "RUB"

// resultPlaces is the precision of a converted amount.
const resultPlaces = 6

var (
	ErrRatesUnavailable = errors.New("rates unavailable")
	ErrUnknownCurrency  = errors.New("currency is not quoted")
)

type RateService struct {
	cbr    cbr.CbrClient
	logger *logrus.Logger
}

func NewRateService(cbr cbr.CbrClient, logger *logrus.Logger) *RateService {
	return &RateService{
		cbr:    cbr,
		logger: logger,
	}
}

// LatestRates fetches the current quotes. Any failure to reach the feed,
// including a context deadline, is reported as ErrRatesUnavailable.
func (r *RateService) LatestRates(ctx context.Context) ([]entity.Rate, error) {
	r.logger.Debug("Fetching currency rates from CBR...")

	resp, err := r.cbr.FetchRates(ctx, "")
	if err != nil {
		if errors.Is(err, cbr.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			r.logger.Warnf("Rates unavailable: %v", err)
			return nil, fmt.Errorf("%w: %w", ErrRatesUnavailable, err)
		}
		r.logger.Errorf("Failed to fetch rates from CBR: %v", err)
		return nil, fmt.Errorf("fetch rates: %w", err)
	}

	rates, err := convertCBRResponse(*resp, r.logger)
	if err != nil {
		r.logger.Errorf("Failed to convert response: %v", err)
		return nil, fmt.Errorf("convert response: %w", err)
	}

	if len(rates) == 0 {
		r.logger.Warn("No rates found in response")
		return nil, fmt.Errorf("%w: feed returned no rates", ErrRatesUnavailable)
	}

	return rates, nil
}

// Convert turns amount of from into to, crossing through roubles.
func (r *RateService) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return amount, nil
	}

	rates, err := r.LatestRates(ctx)
	if err != nil {
		return 0, err
	}

	table := rubPerUnit(rates)

	fromRate, ok := table[from]
	if !ok {
		r.logger.Warnf("Currency %s not found in feed", from)
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := table[to]
	if !ok {
		r.logger.Warnf("Currency %s not found in feed", to)
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	converted := decimal.NewFromFloat(amount).
		Mul(fromRate).
		Div(toRate).
		Round(resultPlaces)

	result, _ := converted.Float64()
	r.logger.Debugf("Converted %v %s to %v %s", amount, from, result, to)
	return result, nil
}

func rubPerUnit(rates []entity.Rate) map[string]decimal.Decimal {
	table := make(map[string]decimal.Decimal, len(rates)+1)
	table[BaseCurrency] = decimal.NewFromInt(1)
	for _, rate := range rates {
		table[rate.CharCode] = decimal.NewFromFloat(rate.Value).Div(decimal.NewFromInt(int64(rate.Nominal)))
	}
	return table
}

func convertCBRResponse(resp cbr.ValCurs, logger *logrus.Logger) ([]entity.Rate, error) {
	var result []entity.Rate
	var errs []error

	if len(resp.Valutes) == 0 {
		logger.Warn("No valutes found in response")
		return result, nil
	}

	var respDate time.Time
	if resp.Date != "" {
		var err error
		respDate, err = time.Parse("02.01.2006", resp.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CBR response date '%s': %w", resp.Date, err)
		}
	} else {
		respDate = time.Now().Truncate(24 * time.Hour)
		logger.Warn("No date in CBR response, using current date")
	}

	skipped := 0
	for _, valute := range resp.Valutes {
		value, err := valute.GetValue()
		if err != nil {
			logger.Debugf("Skipped %s due to parse error: %v", valute.CharCode, err)
			skipped++
			continue
		}
		if value <= 0 || valute.Nominal <= 0 {
			logger.Debugf("Skipped %s due to non-positive value or nominal", valute.CharCode)
			skipped++
			continue
		}

		result = append(result, entity.Rate{
			CharCode: strings.ToUpper(valute.CharCode),
			Name:     valute.Name,
			Nominal:  valute.Nominal,
			Value:    value,
			NumCode:  valute.NumCode,
			Date:     respDate,
		})
	}

	logger.Debugf("Converted %d valid rates out of %d (skipped %d)", len(result), len(resp.Valutes), skipped)

	if len(result) == 0 {
		errs = append(errs, fmt.Errorf("all %d valutes were skipped", len(resp.Valutes)))
	}

	if len(errs) > 0 {
		return result, multierr.Combine(errs...)
	}
	return result, nil
}
