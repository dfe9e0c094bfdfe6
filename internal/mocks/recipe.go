package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// MockRecipeGenerator is a mock implementation of service.IRecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

// GenerateRecipe mocks the GenerateRecipe method
func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error) {
	args := m.Called(ctx, ingredients, mood)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// MockTextGenerator is a mock implementation of service.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// GenerateContent mocks the GenerateContent method
func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
