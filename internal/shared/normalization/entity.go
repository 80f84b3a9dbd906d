package normalization

import "strings"

// entityAliases maps the entity name variants seen in broker payloads and
// URLs onto their canonical plural form.
var entityAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "",

	"table":  "tables",
	"tables": "tables",
	"mesa":   "tables",
	"mesas":  "tables",

	"area":  "areas",
	"areas": "areas",
	"zone":  "areas",
	"zones": "areas",

	"reservation":  "reservations",
	"reservations": "reservations",
	"reserva":      "reservations",
	"reservas":     "reservations",

	"order":   "orders",
	"orders":  "orders",
	"pedido":  "orders",
	"pedidos": "orders",

	"layout":  "layout",
	"layouts": "layout",

	"notice":  "notices",
	"notices": "notices",
}

// NormalizeEntity converts entity name variants (singular/plural forms,
// separators, Portuguese aliases from the POS feed) to their canonical
// form.
func NormalizeEntity(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	normalized := strings.ReplaceAll(trimmed, "_", "-")

	if canonical, found := entityAliases[normalized]; found {
		return canonical
	}
	return normalized
}
