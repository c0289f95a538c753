package domain

// CalendarEvent is an event as returned by the Graph API.
type CalendarEvent struct {
	ID        string        `json:"id,omitempty"`
	Subject   string        `json:"subject"`
	Body      *ItemBody     `json:"body,omitempty"`
	Start     *DateTimeZone `json:"start,omitempty"`
	End       *DateTimeZone `json:"end,omitempty"`
	Location  *Location     `json:"location,omitempty"`
	Organizer *Recipient    `json:"organizer,omitempty"` //nolint:misspell // Microsoft API field name
	WebLink   string        `json:"webLink,omitempty"`
}

// OrganizerName returns the organiser's display name, or "Unknown".
func (e *CalendarEvent) OrganizerName() string {
	if e.Organizer == nil || e.Organizer.EmailAddress.Name == "" {
		return "Unknown"
	}
	return e.Organizer.EmailAddress.Name
}

// EventDraft is the payload sent to create an event.
// It has no id or organiser; the server assigns both.
type EventDraft struct {
	Subject  string       `json:"subject"`
	Body     ItemBody     `json:"body"`
	Start    DateTimeZone `json:"start"`
	End      DateTimeZone `json:"end"`
	Location Location     `json:"location"`
}

// ItemBody contains the event body content.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// DateTimeZone contains a date-time with time zone.
// DateTime is ISO-8601 without an offset, interpreted in TimeZone.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location contains location information.
type Location struct {
	DisplayName string `json:"displayName"`
}

// Recipient wraps an email address.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is a named mailbox.
type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
