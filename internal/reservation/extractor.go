// internal/reservation/extractor.go
package reservation

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// The delimiter convention lives entirely in this file; the relay and
// the booking logic never touch the raw tokens. Non-greedy so that only
// the first block is consumed, dot-matches-newline because the model is
// free to pretty-print the JSON.
var blockPattern = regexp.MustCompile(`(?s)\[RESERVATION_DATA\](.*?)\[/RESERVATION_DATA\]`)

// Extract scans assistant text for an embedded reservation block.
// Returns (nil, false, nil) when no block is present, (req, true, nil)
// on a parsed block, and (nil, true, err) when a block exists but its
// contents are not valid JSON.
func Extract(text string) (*Request, bool, error) {
	m := blockPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}

	var req Request
	if err := json.Unmarshal([]byte(m[1]), &req); err != nil {
		return nil, true, fmt.Errorf("parse reservation block: %w", err)
	}
	return &req, true, nil
}

// StripBlock removes the first reservation block from the text,
// leaving the rest untouched. Identity when no block is present.
func StripBlock(text string) string {
	return replaceBlock(text, "")
}

// WithConfirmation replaces the reservation block with a confirmation
// echoing what was booked.
func WithConfirmation(text string, req *Request) string {
	confirmation := fmt.Sprintf(
		"\n\n✅ **Reservation Confirmed!**\n- Name: %s\n- Date: %s\n- Time: %s\n- Party size: %d guests\n\nYou'll receive a confirmation shortly. À bientôt!",
		req.Name, req.Date, req.Time, req.PartySize,
	)
	return replaceBlock(text, confirmation)
}

// WithApology replaces the reservation block with a booking-failure
// apology.
func WithApology(text string) string {
	return replaceBlock(text,
		"\n\n⚠️ I apologize, but there was an issue booking your reservation. Please try again or call us directly.")
}

func replaceBlock(text, replacement string) string {
	loc := blockPattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + replacement + text[loc[1]:]
}
