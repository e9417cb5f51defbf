package platform

import (
	"context"

	"github.com/imamik/psclink/internal/config"
	"github.com/imamik/psclink/internal/credentials"
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/platform/cloud/memory"
)

// simulatedToken is handed out for every project; the in-process provider
// does not check it.
const simulatedToken = "simulated"

// Simulated reconciles against an in-process provider. Both sides share
// the provider; project scoping is still enforced by the factory.
type Simulated struct {
	base
	provider *memory.Provider
}

func newSimulated(cfg config.SimulatedConfig, o *options) *Simulated {
	p := o.provider
	if p == nil {
		var mopts []memory.Option
		if cfg.OperationPolls > 0 {
			mopts = append(mopts, memory.WithOperationPolls(cfg.OperationPolls))
		}
		if cfg.Backends > 0 {
			mopts = append(mopts, memory.WithDefaultBackends(cfg.Backends))
		}
		p = memory.New(mopts...)
	}

	connect := func(context.Context, string, credentials.Identity, credentials.Token) (cloud.Client, error) {
		return p, nil
	}
	return &Simulated{
		base:     newBase(credentials.StaticTokenSource(simulatedToken), connect, o),
		provider: p,
	}
}

// Name implements Platform.
func (s *Simulated) Name() string { return config.PlatformSimulated }

// Provider returns the in-process provider.
func (s *Simulated) Provider() *memory.Provider { return s.provider }
