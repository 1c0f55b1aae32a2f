package domain

import "unicode/utf8"

// MaxSMSContentLength bounds the free-text body of an outbound message.
const MaxSMSContentLength = 1000

// SMSPayload is the validated input to the outbound message gateway.
type SMSPayload struct {
	TenantID string `json:"tenantId" yaml:"tenantId" mapstructure:"tenantId"`
	UserID   string `json:"userId" yaml:"userId" mapstructure:"userId"`
	Content  string `json:"content" yaml:"content" mapstructure:"content"`
}

// Validate checks the per-field constraints. It returns a *ValidationError
// naming the first offending field, or nil if the payload is well formed.
func (p SMSPayload) Validate() error {
	if p.TenantID == "" {
		return &ValidationError{Field: "tenantId", Reason: "must not be empty"}
	}
	if p.UserID == "" {
		return &ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if p.Content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(p.Content) > MaxSMSContentLength {
		return &ValidationError{Field: "content", Reason: "exceeds maximum length"}
	}
	return nil
}
