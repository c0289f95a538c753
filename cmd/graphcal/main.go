package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/graphcal/internal/adapters/driven/config/file"
	"github.com/custodia-labs/graphcal/internal/adapters/driving/cli"
	"github.com/custodia-labs/graphcal/internal/connectors"
	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/connectors/microsoft/deviceflow"
	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/services"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// bootstrap wires the services once the CLI has parsed its flags.
func bootstrap(opts cli.BootstrapOptions) (*cli.Services, error) {
	log := opts.Logger

	store, err := file.NewStore(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	log.Debugf("config: loaded %s", store.Path())

	creds, err := cfg.Credentials()
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return nil, fmt.Errorf("%w\n%s", err, microsoft.SetupHint())
		}
		return nil, err
	}

	authenticator := deviceflow.New(
		deviceflow.WithAuthority(cfg.Auth.Authority),
		deviceflow.WithNotifier(opts.Notifier),
		deviceflow.WithLogger(log),
	)
	calendars := connectors.NewFactory(cfg.Calendar, cfg.RateLimit(), connectors.WithLogger(log))

	session, err := services.NewSession(creds, authenticator, calendars, log)
	if err != nil {
		return nil, err
	}
	return &cli.Services{Session: session}, nil
}
