package client

import (
	"fmt"
	"strings"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// ShareText renders recipe as the plain text copied to the clipboard
func ShareText(recipe types.Recipe) string {
	return fmt.Sprintf("🍽️ %s\n\n\"%s\"\n\n🛒 Ingredients:\n%s\n\n🔥 Steps:\n%s",
		recipe.DishName,
		recipe.MomMessage,
		strings.Join(recipe.IngredientsList, "\n"),
		strings.Join(recipe.Steps, "\n"),
	)
}
