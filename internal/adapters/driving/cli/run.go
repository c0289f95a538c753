package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// Flags for run.
var (
	runLimit      int
	runShowTokens bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sign in, greet you and list your upcoming events",
	Long: `Sign in with a device code, print a welcome with your display name and
list your next events. A failed profile or event lookup is reported and the
remaining steps still run; the command then exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	svc, err := session(cmd)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	token, err := svc.Authenticate(cmd.Context())
	if err != nil {
		return err
	}
	cal, err := svc.Calendar(token)
	if err != nil {
		return err
	}

	var errs []error
	profile, err := cal.GetProfile(cmd.Context())
	if err != nil {
		p.Error("Error fetching user profile: " + err.Error())
		errs = append(errs, err)
	} else {
		p.Welcome(profile)
	}

	events, err := cal.ListUpcomingEvents(cmd.Context(), runLimit)
	if err != nil {
		p.Error("Error fetching events: " + err.Error())
		errs = append(errs, err)
	} else {
		p.Events(events)
	}

	if runShowTokens {
		p.Tokens(token)
	}
	return errors.Join(errs...)
}

func init() {
	runCmd.Flags().IntVarP(&runLimit, "limit", "n", 0, "number of events to show (default from config, 5)")
	runCmd.Flags().BoolVar(&runShowTokens, "show-tokens", false, "print the ID and access tokens")
	rootCmd.AddCommand(runCmd)
}
