package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/graphcal/internal/core/ports/driven"
	"github.com/custodia-labs/graphcal/internal/core/ports/driving"
	"github.com/custodia-labs/graphcal/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the default config file location.
	configPath string

	// sessionService is injected directly or built lazily by bootstrap.
	sessionService driving.SessionService

	bootstrap     Bootstrap
	bootstrapOnce sync.Once
	bootstrapErr  error
)

// errNotConfigured is returned when a command runs without services.
var errNotConfigured = errors.New("services not configured")

// Services holds service implementations for CLI commands.
type Services struct {
	Session driving.SessionService
}

// BootstrapOptions carries what the CLI knows once flags are parsed.
type BootstrapOptions struct {
	ConfigPath string
	Verbose    bool
	Logger     *zap.SugaredLogger
	Notifier   driven.DeviceCodeNotifier
}

// Bootstrap builds services from parsed flags. It runs at most once, and
// only for commands that need a session.
type Bootstrap func(opts BootstrapOptions) (*Services, error)

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	sessionService = s.Session
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
	bootstrapOnce = sync.Once{}
	bootstrapErr = nil
}

// session returns the session service, bootstrapping it if needed.
func session(cmd *cobra.Command) (driving.SessionService, error) {
	if sessionService != nil {
		return sessionService, nil
	}
	if bootstrap == nil {
		return nil, errNotConfigured
	}

	bootstrapOnce.Do(func() {
		services, err := bootstrap(BootstrapOptions{
			ConfigPath: configPath,
			Verbose:    verbose,
			Logger:     logger.NewWithWriter(cmd.ErrOrStderr(), verbose),
			Notifier:   newDeviceCodeNotifier(newPrinter(cmd.OutOrStdout())),
		})
		if err != nil {
			bootstrapErr = err
			return
		}
		SetServices(services)
	})
	if bootstrapErr != nil {
		return nil, bootstrapErr
	}
	if sessionService == nil {
		return nil, errNotConfigured
	}
	return sessionService, nil
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "graphcal",
	Short: "Microsoft Graph calendar from the terminal",
	Long: `Graphcal signs you in to Microsoft with a device code and works with your
Outlook calendar through Microsoft Graph.

Set CLIENT_ID and TENANT_ID, or put them in ~/.graphcal/config.toml.
Nothing is cached: every command starts a fresh sign-in.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx. Cancelling ctx stops a
// device flow that is still polling.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		newPrinter(rootCmd.ErrOrStderr()).Error(fmt.Sprintf("Error: %v", err))
	}
	return err
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.graphcal/config.toml)")
}
