package otel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"discadian/internal/platform/config"
	"discadian/internal/platform/otel"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.OTel
	}{
		{name: "no endpoint", cfg: config.OTel{Enabled: true}},
		{name: "disabled", cfg: config.OTel{Enabled: false, Endpoint: "http://localhost:4318"}},
		// Non-routable, so nothing is exported.
		{name: "exporting", cfg: config.OTel{Enabled: true, Endpoint: "http://192.0.2.1:4318", ServiceName: "discadian-test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := otel.Setup(context.Background(), tt.cfg)
			require.NoError(t, err)
			require.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestNoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := otel.Setup(context.Background(), config.OTel{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}
