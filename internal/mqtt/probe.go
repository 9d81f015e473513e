package mqtt

import (
	"context"

	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/settings"
)

// Prober checks candidate settings against the broker with a single
// connect attempt.
type Prober struct {
	Configuration *configuration.Configuration
	Logger        logger.Logger
}

func (p Prober) Probe(ctx context.Context, s settings.Settings) (ConnectResult, error) {
	cl := NewClient(p.Configuration, s, p.Logger)
	defer cl.Dispose()

	return cl.Connect(ctx)
}
