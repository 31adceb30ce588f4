package menu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lumiere-concierge/internal/common/logger"
)

func testItems() []Item {
	return []Item{
		{
			Name:        "Coq au Vin",
			Description: "Braised chicken in red wine",
			Price:       34,
			Category:    "Mains",
			Tags:        []string{"signature"},
			Allergens:   []string{"sulfites"},
			Available:   true,
		},
		{
			Name:      "Tarte Tatin",
			Price:     14.5,
			Category:  "Desserts",
			Available: false,
		},
	}
}

func TestRenderMenu_Lines(t *testing.T) {
	rendered := RenderMenu(testItems())
	lines := strings.Split(rendered, "\n")

	assert.Len(t, lines, 2)
	assert.Equal(t, "- Coq au Vin (Mains, $34): Braised chicken in red wine [signature] Allergens: sulfites", lines[0])
	assert.Equal(t, "- Tarte Tatin (Desserts, $14.5): No description [UNAVAILABLE]", lines[1])
}

func TestRenderMenu_EveryVisibleItemOnceInOrder(t *testing.T) {
	items := []Item{
		{Name: "Escargots", Category: "Starters", Price: 18, Available: true},
		{Name: "Bouillabaisse", Category: "Mains", Price: 42, Available: true},
		{Name: "Escalope", Category: "Mains", Price: 38, Available: true},
	}

	rendered := RenderMenu(items)
	for _, item := range items {
		assert.Equal(t, 1, strings.Count(rendered, "- "+item.Name+" ("))
	}

	// Order mirrors store iteration order.
	assert.Less(t, strings.Index(rendered, "Escargots"), strings.Index(rendered, "Bouillabaisse"))
	assert.Less(t, strings.Index(rendered, "Bouillabaisse"), strings.Index(rendered, "Escalope"))
}

func TestSystemPrompt_EmbedsMenuAndInstructions(t *testing.T) {
	prompt := SystemPrompt(testItems())

	assert.Contains(t, prompt, "- Coq au Vin (Mains, $34)")
	assert.Contains(t, prompt, "[RESERVATION_DATA]")
	assert.Contains(t, prompt, "[/RESERVATION_DATA]")
	assert.Contains(t, prompt, `"party_size"`)
	assert.Contains(t, prompt, "Closed Mondays")
	assert.NotContains(t, prompt, menuPlaceholder)
}

func TestSystemPrompt_PlaceholderWhenEmpty(t *testing.T) {
	prompt := SystemPrompt(nil)
	assert.Contains(t, prompt, menuPlaceholder)
}

type failingLister struct{}

func (failingLister) VisibleItems(context.Context) ([]Item, error) {
	return nil, errors.New("connection refused")
}

func TestContextBuilder_DegradesToPlaceholderOnStoreFailure(t *testing.T) {
	b := NewContextBuilder(failingLister{}, logger.NewNoOpLogger())

	prompt := b.BuildSystemPrompt(context.Background())
	assert.Contains(t, prompt, menuPlaceholder)
}
