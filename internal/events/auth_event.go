package events

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Varun5711/modesta/internal/enrichment"
	"github.com/google/uuid"
)

type Type string

const (
	UserRegistered      Type = "user.registered"
	LoginSucceeded      Type = "login.succeeded"
	LoginFailed         Type = "login.failed"
	SetPasswordRequired Type = "login.set_password_required"
	EmailVerified       Type = "email.verified"
	VerificationResent  Type = "verification.resent"
	PasswordSet         Type = "password.set"
	EmailDeliveryFailed Type = "email.delivery_failed"
)

// AuthEvent is one entry on the auth events stream. It never carries
// passwords or tokens.
type AuthEvent struct {
	ID         string
	Type       Type
	UserID     string
	Email      string
	IP         string
	UserAgent  string
	Browser    string
	OS         string
	DeviceType string
	Reason     string
	Timestamp  time.Time
}

// Meta is the request context attached to events.
type Meta struct {
	IP        string
	UserAgent string
}

func New(t Type, userID, email string, meta Meta, now time.Time) *AuthEvent {
	e := &AuthEvent{
		ID:        uuid.New().String(),
		Type:      t,
		UserID:    userID,
		Email:     email,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Timestamp: now.UTC(),
	}
	if meta.UserAgent != "" {
		ua := enrichment.ParseUserAgent(meta.UserAgent)
		e.Browser = ua.Browser
		e.OS = ua.OS
		e.DeviceType = ua.DeviceType
	}
	return e
}

func (e *AuthEvent) WithReason(reason string) *AuthEvent {
	e.Reason = reason
	return e
}

func (e *AuthEvent) Values() map[string]interface{} {
	fields := map[string]interface{}{
		"event_id":  e.ID,
		"type":      string(e.Type),
		"timestamp": e.Timestamp.UnixMilli(),
	}

	optional := map[string]string{
		"user_id":     e.UserID,
		"email":       e.Email,
		"ip":          e.IP,
		"user_agent":  e.UserAgent,
		"browser":     e.Browser,
		"os":          e.OS,
		"device_type": e.DeviceType,
		"reason":      e.Reason,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}

	return fields
}

// FromValues decodes a stream entry. Redis returns every field as a string.
func FromValues(values map[string]interface{}) (*AuthEvent, error) {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}

	e := &AuthEvent{
		ID:         str("event_id"),
		Type:       Type(str("type")),
		UserID:     str("user_id"),
		Email:      str("email"),
		IP:         str("ip"),
		UserAgent:  str("user_agent"),
		Browser:    str("browser"),
		OS:         str("os"),
		DeviceType: str("device_type"),
		Reason:     str("reason"),
	}
	if e.ID == "" || e.Type == "" {
		return nil, fmt.Errorf("invalid auth event: missing id or type")
	}

	switch ts := values["timestamp"].(type) {
	case string:
		ms, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid auth event timestamp %q: %w", ts, err)
		}
		e.Timestamp = time.UnixMilli(ms).UTC()
	case int64:
		e.Timestamp = time.UnixMilli(ts).UTC()
	default:
		return nil, fmt.Errorf("invalid auth event: missing timestamp")
	}

	return e, nil
}
