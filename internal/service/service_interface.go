package service

import "context"

// Converter is the conversion capability the rest of the program depends on.
type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64) (float64, error)
}
