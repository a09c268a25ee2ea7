package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoAccessToken is returned by Decode when session.accessToken is missing.
var ErrNoAccessToken = errors.New("callback response did not include session.accessToken")

// Record is the session payload returned by the backend token exchange.
// Raw is kept verbatim so provider-defined fields survive a round trip.
type Record struct {
	Raw json.RawMessage

	accessToken string
	email       string
}

// Decode builds a Record from a JSON object and requires session.accessToken.
func Decode(raw json.RawMessage) (Record, error) {
	rec, err := decodeView(raw)
	if err != nil {
		return Record{}, err
	}
	if rec.accessToken == "" {
		return Record{}, ErrNoAccessToken
	}
	return rec, nil
}

// decodeView reads the display fields. Keys are matched exactly; struct
// decoding would also accept "SESSION" or "AccessToken".
func decodeView(raw json.RawMessage) (Record, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Record{}, fmt.Errorf("decode session record: %w", err)
	}
	return Record{
		Raw:         append(json.RawMessage(nil), raw...),
		accessToken: nestedString(top, "session", "accessToken"),
		email:       nestedString(top, "user", "email"),
	}, nil
}

// nestedString returns obj[parent][key] when it is a JSON string, else "".
func nestedString(obj map[string]json.RawMessage, parent, key string) string {
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(obj[parent], &inner); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(inner[key], &value); err != nil {
		return ""
	}
	return value
}

// AccessToken returns session.accessToken.
func (r Record) AccessToken() string { return r.accessToken }

// Email returns user.email, or "" when the backend did not send one.
func (r Record) Email() string { return r.email }
