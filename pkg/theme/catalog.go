// Package theme owns the visual theme catalog and the active selection.
package theme

import "github.com/whispernotes/whisper/pkg/core"

// catalog is the fixed, ordered set of built-in themes. It is seeded at
// process start and never mutated; only the selection (and the DarkMode flag
// of the active copy) changes at runtime.
var catalog = []core.Theme{
	{
		ID:                 "default",
		Name:               "Ghibli Meadows",
		Description:        "The default Ghibli-inspired theme with peaceful sky blues and warm beige tones",
		Image:              "howl-sky",
		PrimaryColor:       "#A4C6E7",
		SecondaryColor:     "#F7EFE2",
		AccentColor:        "#E6C17A",
		BackgroundGradient: "bg-gradient-to-b from-ghibli-sky-light to-ghibli-beige",
		TextColor:          "text-ghibli-navy",
		CardBackground:     "bg-white/80",
		CardTextColor:      "text-ghibli-navy",
		AccentTextColor:    "text-ghibli-terracotta",
	},
	{
		ID:                 "totoro-forest",
		Name:               "Totoro's Forest",
		Description:        "Lush greens and earth tones inspired by My Neighbor Totoro",
		Image:              "totoro-forest",
		PrimaryColor:       "#8CAB93",
		SecondaryColor:     "#F7EFE2",
		AccentColor:        "#D4A28B",
		BackgroundGradient: "bg-gradient-to-b from-green-100 to-green-50",
		TextColor:          "text-green-900",
		CardBackground:     "bg-green-50/90",
		CardTextColor:      "text-green-900",
		AccentTextColor:    "text-green-700",
	},
	{
		ID:                 "spirited-bath",
		Name:               "Spirited Bathhouse",
		Description:        "Rich reds and golds inspired by the bathhouse in Spirited Away",
		Image:              "spirited-bath",
		PrimaryColor:       "#D4A28B",
		SecondaryColor:     "#F7EFE2",
		AccentColor:        "#E6C17A",
		BackgroundGradient: "bg-gradient-to-b from-red-100 to-orange-50",
		TextColor:          "text-red-900",
		CardBackground:     "bg-red-50/90",
		CardTextColor:      "text-red-900",
		AccentTextColor:    "text-red-700",
	},
	{
		ID:                 "kiki-delivery",
		Name:               "Kiki's Delivery",
		Description:        "Purple skies and soft pinks inspired by Kiki's Delivery Service",
		Image:              "kiki-delivery",
		PrimaryColor:       "#E6BAB7",
		SecondaryColor:     "#F7EFE2",
		AccentColor:        "#A4C6E7",
		BackgroundGradient: "bg-gradient-to-b from-purple-100 to-pink-50",
		TextColor:          "text-purple-900",
		CardBackground:     "bg-purple-50/90",
		CardTextColor:      "text-purple-900",
		AccentTextColor:    "text-purple-700",
	},
	{
		ID:                 "ghibli-night",
		Name:               "Ghibli Night",
		Description:        "A soothing dark theme for nighttime journaling",
		Image:              "howl-sky",
		PrimaryColor:       "#1F2937",
		SecondaryColor:     "#374151",
		AccentColor:        "#F8D078",
		DarkMode:           true,
		BackgroundGradient: "bg-gradient-to-b from-ghibli-navy to-gray-900",
		TextColor:          "text-ghibli-cream",
		CardBackground:     "bg-ghibli-navy/60",
		CardTextColor:      "text-ghibli-cream",
		AccentTextColor:    "text-ghibli-amber",
	},
}

// Catalog returns the built-in themes in their fixed order. Callers get a
// copy; the catalog itself cannot be changed.
func Catalog() []core.Theme {
	out := make([]core.Theme, len(catalog))
	copy(out, catalog)
	return out
}

// lookup finds a catalog entry by ID.
func lookup(id string) (core.Theme, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return core.Theme{}, false
}
