package task

import (
	"math/rand"
)

// categoryPalette holds the hex colors a category can be assigned when the
// user does not pick one.
var categoryPalette = []string{
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // yellow
	"#EF4444", // red
	"#8B5CF6", // purple
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
	"#6366F1", // indigo
	"#06B6D4", // cyan
}

// RandomColor picks a random palette color for a new category.
func RandomColor() string {
	return categoryPalette[rand.Intn(len(categoryPalette))]
}
