package service

import (
	"context"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// TextGenerator is a single-shot text completion client.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// IRecipeGenerator turns a request into a validated recipe.
type IRecipeGenerator interface {
	GenerateRecipe(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error)
}
