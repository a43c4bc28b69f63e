package handler

type ConvertQuery struct {
	From   string   `form:"from" binding:"required,len=3"`
	To     string   `form:"to" binding:"required,len=3"`
	Amount *float64 `form:"amount" binding:"required,min=0"`
}

type ConvertResponse struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Converted float64 `json:"converted"`
	Text      string  `json:"text"`
}

type CurrencyResponse struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol,omitempty"`
	Name   string `json:"name"`
	Label  string `json:"label"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
