// Package qr normalizes heterogeneous scanner output into the canonical
// payload the verification pipeline consumes.
package qr

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
)

// Payload is the canonical decoded form of a scanned code.
type Payload struct {
	ID       string       `json:"id"`
	EventID  string       `json:"eventId"`
	Type     model.QRType `json:"type"`
	Quantity float64      `json:"quantity,omitempty"`
}

// scannerResult covers the wrapper objects emitted by browser scanner
// libraries. Exactly one of the candidate fields carries the real data.
type scannerResult struct {
	RawValue string `json:"rawValue"`
	Text     string `json:"text"`
	Data     string `json:"data"`
}

func (s scannerResult) candidate() string {
	for _, v := range []string{s.RawValue, s.Text, s.Data} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Decode accepts the three shapes produced by real scanners: a JSON
// string (raw payload JSON, or an http(s) URL carrying URL-encoded JSON
// in a `data` query param), an array of scanner results (first element
// wins), or an object exposing rawValue/text/data. A bare payload
// object is accepted as-is. Failure always yields ErrInvalidQR, never a
// partial payload.
func Decode(raw json.RawMessage) (*Payload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidQR)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
			return nil, fmt.Errorf("%w: empty scan result", domain.ErrInvalidQR)
		}
		return Decode(items[0])
	case '{':
		var wrapper scannerResult
		if err := json.Unmarshal(raw, &wrapper); err == nil {
			if c := wrapper.candidate(); c != "" {
				return decodeString(c)
			}
		}
		// Not a wrapper; treat the object itself as the payload.
		return decodePayload(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: malformed string", domain.ErrInvalidQR)
		}
		return decodeString(s)
	default:
		return decodeString(trimmed)
	}
}

func decodeString(s string) (*Payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidQR)
	}
	// Custodial flow: the QR encodes a web link whose `data` query param
	// carries the URL-encoded payload JSON.
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed URL", domain.ErrInvalidQR)
		}
		data := u.Query().Get("data")
		if data == "" {
			return nil, fmt.Errorf("%w: missing data parameter", domain.ErrInvalidQR)
		}
		return decodePayload([]byte(data))
	}
	return decodePayload([]byte(s))
}

func decodePayload(b []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON", domain.ErrInvalidQR)
	}
	if p.ID == "" || p.EventID == "" {
		return nil, fmt.Errorf("%w: missing id or eventId", domain.ErrInvalidQR)
	}
	return &p, nil
}
