package main

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	otelexport "github.com/MrEthical07/goScope/metrics/export/otel"
)

const meterName = "github.com/MrEthical07/goScope"

// startTelemetry pushes engine metrics to an OTLP/HTTP collector at endpoint, a full
// URL such as "http://collector:4318/v1/metrics". The returned func flushes and stops
// the push loop.
func startTelemetry(ctx context.Context, endpoint string, interval time.Duration, source otelexport.Source) (func(context.Context) error, error) {
	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	return startMeter(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), source)
}

func startMeter(reader sdkmetric.Reader, source otelexport.Source) (func(context.Context) error, error) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := otelexport.New(provider.Meter(meterName), source)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	return func(ctx context.Context) error {
		// Shutdown runs a final collection, so the callback must still be registered.
		if err := provider.Shutdown(ctx); err != nil {
			return err
		}
		return exp.Close()
	}, nil
}
