package cli

import (
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List or create calendar events",
}

// Flags for events list.
var eventsLimit int

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming events, earliest first",
	Args:  cobra.NoArgs,
	RunE:  runEventsList,
}

// Flags for events create.
var (
	eventsSubject  string
	eventsDuration int
)

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event starting in a few minutes",
	Long: `Create an event in your default calendar. It starts shortly after now and
lasts --duration minutes. The event printed is the one Outlook stored.

Examples:
  graphcal events create --subject "Focus time"
  graphcal events create --subject "1:1" --duration 15`,
	Args: cobra.NoArgs,
	RunE: runEventsCreate,
}

func runEventsList(cmd *cobra.Command, _ []string) error {
	svc, err := session(cmd)
	if err != nil {
		return err
	}
	token, err := svc.Authenticate(cmd.Context())
	if err != nil {
		return err
	}
	cal, err := svc.Calendar(token)
	if err != nil {
		return err
	}

	events, err := cal.ListUpcomingEvents(cmd.Context(), eventsLimit)
	if err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout()).Events(events)
	return nil
}

func runEventsCreate(cmd *cobra.Command, _ []string) error {
	svc, err := session(cmd)
	if err != nil {
		return err
	}
	token, err := svc.Authenticate(cmd.Context())
	if err != nil {
		return err
	}
	cal, err := svc.Calendar(token)
	if err != nil {
		return err
	}

	event, err := cal.CreateEvent(cmd.Context(), eventsSubject, eventsDuration)
	if err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout()).Created(event)
	return nil
}

func init() {
	eventsListCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 0, "number of events to show (default from config, 5)")

	eventsCreateCmd.Flags().StringVarP(&eventsSubject, "subject", "s", "", "event subject (required)")
	eventsCreateCmd.Flags().IntVarP(&eventsDuration, "duration", "d", 0, "length in minutes (default from config, 30)")
	_ = eventsCreateCmd.MarkFlagRequired("subject")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsCreateCmd)
	rootCmd.AddCommand(eventsCmd)
}
