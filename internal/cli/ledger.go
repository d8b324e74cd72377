package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aretw0/turtleshot/internal/adapters"
	"github.com/aretw0/turtleshot/internal/config"
	"github.com/aretw0/turtleshot/pkg/persistence/middleware"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// OpenLedger opens the ledger named by cfg.Ledger and wraps it with the
// redaction and sealing layers cfg asks for. The returned close func is never
// nil. A nil ledger means none is configured.
func OpenLedger(cfg config.Config, logger *slog.Logger) (ports.RunLedger, func(), error) {
	noop := func() {}
	base, err := adapters.OpenLedger(cfg.Ledger)
	if err != nil || base == nil {
		return nil, noop, err
	}
	closeFn := func() {
		if err := adapters.CloseLedger(base); err != nil {
			logger.Warn("closing ledger", "err", err)
		}
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("invalid redact pattern: %w", err)
		}
		mws = append(mws, mw)
	}
	if cfg.LedgerKey != "" {
		sealCfg, err := sealConfig(cfg)
		if err != nil {
			closeFn()
			return nil, noop, err
		}
		mw, err := middleware.NewSealMiddleware(sealCfg)
		if err != nil {
			closeFn()
			return nil, noop, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(base, mws...), closeFn, nil
}

func sealConfig(cfg config.Config) (middleware.SealConfig, error) {
	decode := func(s string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("ledger key is not base64: %w", err)
		}
		return k, nil
	}

	var sc middleware.SealConfig
	active, err := decode(cfg.LedgerKey)
	if err != nil {
		return sc, err
	}
	sc.ActiveKey = active
	for _, s := range cfg.LedgerOldKeys {
		k, err := decode(s)
		if err != nil {
			return sc, err
		}
		sc.FallbackKeys = append(sc.FallbackKeys, k)
	}
	return sc, nil
}
