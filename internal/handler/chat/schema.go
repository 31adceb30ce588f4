package chat

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"lumiere-concierge/internal/common/errors"
)

// bookingSchema checks the shape of the booking action payload before
// any field-level validation runs. Business rules (opening hours, party
// size, Mondays) live in the reservation package.
var bookingSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"action", "reservationData"},
	"properties": map[string]interface{}{
		"action": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{actionBookReservation},
		},
		"reservationData": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"name", "phone", "date", "time", "party_size"},
			"properties": map[string]interface{}{
				"name":       map[string]interface{}{"type": "string", "minLength": 1},
				"phone":      map[string]interface{}{"type": "string", "minLength": 1},
				"email":      map[string]interface{}{"type": "string"},
				"date":       map[string]interface{}{"type": "string"},
				"time":       map[string]interface{}{"type": "string"},
				"party_size": map[string]interface{}{"type": "integer"},
				"notes":      map[string]interface{}{"type": "string"},
				"request_id": map[string]interface{}{"type": "string"},
			},
		},
	},
}

func validateBookingPayload(raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(bookingSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewInvalidRequestError("schema validation failed: " + err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.NewInvalidRequestError(strings.Join(details, "; "))
}
