package usecase

import (
	"context"
	"currency-converter/internal/entity"
)

type ConversionUsecase interface {
	Convert(ctx context.Context, req entity.ConversionRequest) (*entity.ConversionResult, error)
	Currencies() []entity.CurrencyRecord
}
