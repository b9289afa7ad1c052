package useragent

import "github.com/mileusna/useragent"

type UserAgent struct {
	Bot       bool   `json:"bot"`
	Mobile    bool   `json:"mobile"`
	OS        string `json:"os"`
	OSVersion string `json:"osVersion"`
	Device    string `json:"device"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}

func ParseUserAgent(userAgent string) *UserAgent {
	parsed := useragent.Parse(userAgent)
	return &UserAgent{
		Bot:       parsed.Bot,
		Mobile:    parsed.Mobile || parsed.Tablet,
		OS:        parsed.OS,
		OSVersion: parsed.OSVersion,
		Device:    parsed.Device,
		Name:      parsed.Name,
		Version:   parsed.Version,
	}
}

// Browser renders the client as "Name Version", or just the name.
func (ua *UserAgent) Browser() string {
	if ua.Version == "" {
		return ua.Name
	}
	return ua.Name + " " + ua.Version
}
