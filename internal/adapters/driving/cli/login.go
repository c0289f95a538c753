package cli

import (
	"github.com/spf13/cobra"
)

// Flags for login.
var loginShowTokens bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a device code and show your profile",
	Long: `Start a device code sign-in. Open the printed link in any browser, enter
the code, and graphcal continues once you have approved access.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, _ []string) error {
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
	profile, err := cal.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	p.Welcome(profile)
	if email := profile.Email(); email != "" {
		p.Field("Signed in as", email)
	}

	if loginShowTokens {
		p.Println("")
		p.Tokens(token)
	}
	return nil
}

func init() {
	loginCmd.Flags().BoolVar(&loginShowTokens, "show-tokens", false, "print the ID and access tokens")
	rootCmd.AddCommand(loginCmd)
}
