// internal/reservation/validate.go
package reservation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Booking rules enforced server-side, independent of what the prompt
// asks the model to do. The model's output crosses a trust boundary
// here: every parsed request is re-checked before a store write.
const (
	openingTime  = "17:00"
	closingTime  = "22:00"
	maxPartySize = 12
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Validate checks a parsed reservation request against the restaurant's
// booking rules. Returns every violation, not just the first.
func Validate(req *Request) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Code: "MISSING_REQUIRED", Message: "name is required"})
	}

	if strings.TrimSpace(req.Phone) == "" {
		errs = append(errs, ValidationError{Field: "phone", Code: "MISSING_REQUIRED", Message: "phone is required"})
	} else if !phonePattern.MatchString(req.Phone) {
		errs = append(errs, ValidationError{Field: "phone", Code: "INVALID_FORMAT", Message: "phone must be a valid phone number"})
	}

	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		errs = append(errs, ValidationError{Field: "email", Code: "INVALID_FORMAT", Message: "email must be a valid address"})
	}

	errs = append(errs, validateDate(req.Date)...)
	errs = append(errs, validateTime(req.Time)...)

	if req.PartySize < 1 {
		errs = append(errs, ValidationError{Field: "party_size", Code: "OUT_OF_RANGE", Message: "party_size must be at least 1"})
	} else if req.PartySize > maxPartySize {
		errs = append(errs, ValidationError{Field: "party_size", Code: "OUT_OF_RANGE",
			Message: fmt.Sprintf("party_size must be at most %d", maxPartySize)})
	}

	return errs
}

func validateDate(date string) []ValidationError {
	if strings.TrimSpace(date) == "" {
		return []ValidationError{{Field: "date", Code: "MISSING_REQUIRED", Message: "date is required"}}
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return []ValidationError{{Field: "date", Code: "INVALID_FORMAT", Message: "date must be in YYYY-MM-DD format"}}
	}

	if parsed.Weekday() == time.Monday {
		return []ValidationError{{Field: "date", Code: "CLOSED", Message: "we are closed on Mondays"}}
	}

	return nil
}

func validateTime(t string) []ValidationError {
	if strings.TrimSpace(t) == "" {
		return []ValidationError{{Field: "time", Code: "MISSING_REQUIRED", Message: "time is required"}}
	}

	parsed, err := time.Parse("15:04", t)
	if err != nil {
		return []ValidationError{{Field: "time", Code: "INVALID_FORMAT", Message: "time must be in HH:MM format"}}
	}

	opening, _ := time.Parse("15:04", openingTime)
	closing, _ := time.Parse("15:04", closingTime)
	if parsed.Before(opening) || parsed.After(closing) {
		return []ValidationError{{Field: "time", Code: "OUT_OF_RANGE",
			Message: fmt.Sprintf("reservations are from %s to %s", openingTime, closingTime)}}
	}

	return nil
}

// JoinMessages flattens validation errors into one details string.
func JoinMessages(errs []ValidationError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}
