package handler

import (
	"currency-converter/internal/catalog"
	"currency-converter/internal/entity"
	"currency-converter/internal/service"
	"currency-converter/internal/usecase"
	"currency-converter/pkg/config"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const unavailableMessage = "It seems that you do not have an internet connection"

type ConverterHandler struct {
	usecase usecase.ConversionUsecase
	style   config.Style
	logger  *logrus.Logger
}

func NewConverterHandler(usecase usecase.ConversionUsecase, style config.Style, logger *logrus.Logger) *ConverterHandler {
	return &ConverterHandler{
		usecase: usecase,
		style:   style,
		logger:  logger,
	}
}

func (h *ConverterHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Style":      h.style,
		"Currencies": h.currencies(),
	})
}

func (h *ConverterHandler) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.currencies())
}

func (h *ConverterHandler) Convert(c *gin.Context) {
	var q ConvertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Debug("Invalid convert query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	req := entity.ConversionRequest{SourceCode: q.From, TargetCode: q.To, Amount: *q.Amount}
	result, err := h.usecase.Convert(c.Request.Context(), req)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Errorf("Failed to convert %v %s to %s", req.Amount, req.SourceCode, req.TargetCode)
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		From:      result.Request.SourceCode,
		To:        result.Request.TargetCode,
		Amount:    result.Request.Amount,
		Converted: result.Converted,
		Text:      result.Text,
	})
}

func (h *ConverterHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ConverterHandler) currencies() []CurrencyResponse {
	records := h.usecase.Currencies()
	out := make([]CurrencyResponse, len(records))
	for i, r := range records {
		out[i] = CurrencyResponse{Code: r.Code, Symbol: r.Symbol, Name: r.Name, Label: r.Label()}
	}
	return out
}

func errorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrRatesUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "rates_unavailable", Message: unavailableMessage}
	case errors.Is(err, entity.ErrInvalidAmount), errors.Is(err, catalog.ErrUnknownCurrency):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, service.ErrUnknownCurrency):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "not_quoted", Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "conversion failed"}
}
