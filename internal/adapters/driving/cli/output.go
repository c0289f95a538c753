package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/ports/driven"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	codeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

// printer writes command output, styled only when w is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, styled: styled}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) Println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

func (p *printer) Title(s string) {
	p.Println(p.render(titleStyle, s))
}

func (p *printer) Error(s string) {
	p.Println(p.render(errorStyle, s))
}

func (p *printer) Field(label, value string) {
	_, _ = fmt.Fprintf(p.w, "   %s %s\n", p.render(labelStyle, label+":"), value)
}

// DeviceCode prints the sign-in instruction. The server message is used
// verbatim when present.
func (p *printer) DeviceCode(session domain.DeviceFlowSession) {
	msg := session.Instruction()
	if p.styled {
		if session.UserCode != "" {
			msg = strings.ReplaceAll(msg, session.UserCode, codeStyle.Render(session.UserCode))
		}
		msg = promptStyle.Render(msg)
	}
	p.Println(msg)
}

// Welcome prints the greeting shown after sign-in.
func (p *printer) Welcome(profile *domain.Profile) {
	p.Println("")
	p.Title(fmt.Sprintf("Welcome, %s!", profile.Name()))
	p.Println("")
}

// Events prints a numbered event list.
func (p *printer) Events(events []domain.CalendarEvent) {
	if len(events) == 0 {
		p.Println("No upcoming events found.")
		return
	}
	p.Title("Your upcoming calendar events:")
	for i := range events {
		p.event(i+1, &events[i])
	}
}

func (p *printer) event(idx int, e *domain.CalendarEvent) {
	subject := e.Subject
	if subject == "" {
		subject = "No subject"
	}
	_, _ = fmt.Fprintf(p.w, "%d. %s %s\n", idx, p.render(labelStyle, "Subject:"), subject)
	p.Field("Organizer", e.OrganizerName())
	p.Field("Start", dateTime(e.Start))
	p.Field("End  ", dateTime(e.End))
	p.Println("")
}

// Created prints the server's record of a new event.
func (p *printer) Created(e *domain.CalendarEvent) {
	p.Title("Event created:")
	p.event(1, e)
	if e.WebLink != "" {
		p.Field("Link", e.WebLink)
	}
}

// Tokens prints the raw tokens.
func (p *printer) Tokens(token *domain.TokenSet) {
	_, _ = fmt.Fprintf(p.w, "ID Token:\n %s \n\n", token.IDToken)
	_, _ = fmt.Fprintf(p.w, "Access Token:\n %s \n\n", token.AccessToken)
}

func dateTime(dt *domain.DateTimeZone) string {
	if dt == nil || dt.DateTime == "" {
		return "unknown"
	}
	if dt.TimeZone == "" {
		return dt.DateTime
	}
	return dt.DateTime + " (" + dt.TimeZone + ")"
}

// newDeviceCodeNotifier prints the sign-in instruction through p.
func newDeviceCodeNotifier(p *printer) driven.DeviceCodeNotifier {
	return driven.NotifierFunc(func(_ context.Context, session domain.DeviceFlowSession) {
		p.DeviceCode(session)
	})
}
