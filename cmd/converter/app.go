package main

import (
	"currency-converter/internal/adapter/cbr"
	"currency-converter/internal/catalog"
	"currency-converter/internal/metrics"
	"currency-converter/internal/service"
	"currency-converter/internal/session"
	"currency-converter/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds the wiring shared by every command.
type app struct {
	catalog  *catalog.Catalog
	rates    *service.RateService
	usecase  *usecase.ConverterUsecase
	metrics  *metrics.ConversionMetrics
	registry *prometheus.Registry
}

func newApp() (*app, error) {
	// catalog errors are fatal: nothing can be selected without it
	cat, err := catalog.Load(cfg.Catalog.Path, log)
	if err != nil {
		return nil, err
	}
	log.Info("Initialized catalog")

	cbrClient := cbr.NewClient(cfg.Rates.BaseURL, cfg.Rates.Timeout, log)
	log.Info("Initialized rate feed client")

	rateService := service.NewRateService(cbrClient, log)
	log.Info("Initialized service layer")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewConversionMetrics(registry)

	converterUsecase := usecase.NewConverterUsecase(cat, rateService, cfg.Converter.Timeout, m, log)
	log.Info("Initialized usecase layer")

	return &app{
		catalog:  cat,
		rates:    rateService,
		usecase:  converterUsecase,
		metrics:  m,
		registry: registry,
	}, nil
}

func (a *app) newSession(prompter session.Prompter, maxRetries int) *session.Session {
	return session.New(a.catalog, a.usecase, prompter, maxRetries, a.metrics, log)
}
