// internal/menu/prompt.go
package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lumiere-concierge/internal/common/logger"
)

// menuPlaceholder stands in for the menu fragment when no items are
// visible or the store is unreachable.
const menuPlaceholder = "Menu is currently being updated. Please ask about our daily specials."

// Lister provides the visible menu items for prompt context.
type Lister interface {
	VisibleItems(ctx context.Context) ([]Item, error)
}

// ContextBuilder renders the current menu into the assistant's system
// prompt. A store failure degrades to the placeholder fragment rather
// than failing the chat request.
type ContextBuilder struct {
	store  Lister
	logger logger.Logger
}

func NewContextBuilder(store Lister, log logger.Logger) *ContextBuilder {
	return &ContextBuilder{
		store:  store,
		logger: log.With(map[string]interface{}{"component": "menu-context"}),
	}
}

func (b *ContextBuilder) BuildSystemPrompt(ctx context.Context) string {
	items, err := b.store.VisibleItems(ctx)
	if err != nil {
		b.logger.Warn("menu fetch failed, using placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		items = nil
	}
	return SystemPrompt(items)
}

// RenderMenu renders one line per item, in the order given.
func RenderMenu(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var sb strings.Builder

		description := item.Description
		if description == "" {
			description = "No description"
		}
		fmt.Fprintf(&sb, "- %s (%s, $%s): %s", item.Name, item.Category, formatPrice(item.Price), description)

		if len(item.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(item.Tags, ", "))
		}
		if len(item.Allergens) > 0 {
			fmt.Fprintf(&sb, " Allergens: %s", strings.Join(item.Allergens, ", "))
		}
		if !item.Available {
			sb.WriteString(" [UNAVAILABLE]")
		}

		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// SystemPrompt embeds the rendered menu into the full assistant prompt.
// The delimiter tokens and JSON key names in the reservation section are
// load-bearing: the extractor and the client both match on them exactly.
func SystemPrompt(items []Item) string {
	menuDescription := RenderMenu(items)
	if menuDescription == "" {
		menuDescription = menuPlaceholder
	}

	return `You are a friendly and helpful AI assistant for Lumière, an upscale French-inspired restaurant. 

Your role is to:
- Answer questions about our menu, including dishes, ingredients, and dietary accommodations
- Help with reservations by collecting guest information
- Describe our ambiance and what guests can expect
- Recommend dishes based on preferences (vegetarian, gluten-free, etc.)
- Provide information about private dining and special events

Restaurant Details:
- Name: Lumière
- Cuisine: Modern French-inspired fine dining
- Ambiance: Elegant, romantic, sophisticated with warm lighting
- Location: Downtown
- Hours: Tuesday-Sunday, 5:00 PM - 10:00 PM (Closed Mondays)

## CURRENT MENU:
` + menuDescription + `

## RESERVATION BOOKING:
When a guest wants to make a reservation, you MUST collect ALL of the following information before confirming:
1. Name (required)
2. Phone number (required)
3. Date (required - format: YYYY-MM-DD)
4. Time (required - format: HH:MM, between 17:00 and 22:00)
5. Party size (required - number of guests)
6. Email (optional)
7. Special requests/notes (optional)

Once you have collected ALL required information, respond with EXACTLY this format on a new line:
[RESERVATION_DATA]{"name":"Guest Name","phone":"1234567890","email":"email@example.com","date":"2024-12-25","time":"19:00","party_size":2,"notes":"any special requests"}[/RESERVATION_DATA]

Important booking rules:
- We are closed on Mondays
- Reservations are from 5:00 PM (17:00) to 10:00 PM (22:00)
- Maximum party size is 12 guests
- For parties larger than 8, mention our private dining room

Keep responses warm, professional, and concise. Use a touch of French flair when appropriate (e.g., "Bon appétit!").`
}
