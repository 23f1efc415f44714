package model

import "time"

// BotAccount is an authorized sender identity used to submit gifts.
// DeviceID and Secret are held in plaintext in memory; stores encode them at rest.
type BotAccount struct {
	AccountID   string    `json:"accountId" yaml:"accountId"`
	DeviceID    string    `json:"-" yaml:"-"`
	Secret      string    `json:"-" yaml:"-"`
	DisplayName string    `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Position    int       `json:"position" yaml:"-"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

// Label returns the display name, or a shortened account id when no name is cached.
func (a BotAccount) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if len(a.AccountID) > 12 {
		return a.AccountID[:12]
	}
	return a.AccountID
}

// AccessToken is a bearer token obtained through the device_auth grant.
// Tokens are acquired per attempt and never stored on the account.
type AccessToken struct {
	Token     string    `json:"access_token"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountInfo is the public profile of a platform account.
type AccountInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// DeviceLogin is an in-progress device authorization login.
type DeviceLogin struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}
