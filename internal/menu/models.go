// internal/menu/models.go
package menu

// Item is a read-only projection of a menu row used to build prompt
// context. It is rebuilt on every request and never cached.
type Item struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Allergens   []string `json:"allergens"`
	Available   bool     `json:"available"`
}
