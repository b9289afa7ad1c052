package auth

import "github.com/golang-jwt/jwt/v4"

// ClaimsData describes an employee access token.
type ClaimsData struct {
	Issuer    string
	UserID    string
	Email     string
	Name      string
	OfficeID  string
	DeviceID  string
	TokenID   string
	ExpiresAt int64
	IssuedAt  int64
}

type employeeClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	OfficeID string `json:"officeID,omitempty"`
	DeviceID string `json:"deviceID,omitempty"`
	jwt.RegisteredClaims
}

func (c *employeeClaims) toClaimsData() *ClaimsData {
	data := &ClaimsData{
		Issuer:   c.Issuer,
		UserID:   c.Subject,
		Email:    c.Email,
		Name:     c.Name,
		OfficeID: c.OfficeID,
		DeviceID: c.DeviceID,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		data.ExpiresAt = c.ExpiresAt.Unix()
	}
	if c.IssuedAt != nil {
		data.IssuedAt = c.IssuedAt.Unix()
	}
	return data
}
