package domain

// Profile contains the signed-in user's basic profile from Microsoft Graph.
type Profile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	GivenName         string `json:"givenName,omitempty"`
	Surname           string `json:"surname,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	Mail              string `json:"mail"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email returns the user's email address.
// Falls back to userPrincipalName if mail is not set.
func (p *Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// Name returns the display name, or "Unknown" when the profile has none.
func (p *Profile) Name() string {
	if p.DisplayName == "" {
		return "Unknown"
	}
	return p.DisplayName
}
