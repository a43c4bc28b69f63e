package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidAmount = errors.New("amount must be a finite non-negative number")

// CurrencyRecord is one entry of the currency catalog.
type CurrencyRecord struct {
	Code   string `json:"code" validate:"required,len=3,alpha,uppercase"`
	Symbol string `json:"symbol,omitempty"`
	Name   string `json:"name" validate:"required"`
}

// Label is the text a selector shows for the record, e.g. "USD (United States dollar)".
func (c CurrencyRecord) Label() string {
	return fmt.Sprintf("%s (%s)", c.Code, c.Name)
}

// Rate is a single quote of the rate feed: Value roubles per Nominal units.
type Rate struct {
	CharCode string    `json:"char_code"`
	Name     string    `json:"name,omitempty"`
	Nominal  int       `json:"nominal,omitempty"`
	Value    float64   `json:"value"`
	NumCode  string    `json:"num_code,omitempty"`
	Date     time.Time `json:"date,omitempty"`
}

type ConversionRequest struct {
	SourceCode string
	TargetCode string
	Amount     float64
}

func (r ConversionRequest) Validate() error {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, r.Amount)
	}
	return nil
}

type ConversionResult struct {
	Request   ConversionRequest
	Converted float64
	Text      string
}
