package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

var (
	recipeValidator = validator.New()
	fenceStripper   = strings.NewReplacer("```json", "", "```", "")
)

// RecipeGenerator sends prompts to the model and turns the answers into recipes.
// It makes exactly one model call per request.
type RecipeGenerator struct {
	llm     TextGenerator
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRecipeGenerator creates a RecipeGenerator. A zero timeout leaves the
// model call bounded only by the caller's context.
func NewRecipeGenerator(llm TextGenerator, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *RecipeGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeGenerator{
		llm:     llm,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// GenerateRecipe builds the prompt for the request and generates a recipe from it.
func (g *RecipeGenerator) GenerateRecipe(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error) {
	if strings.TrimSpace(ingredients) == "" {
		return nil, ErrEmptyIngredients
	}

	prompt, err := BuildPrompt(ingredients, mood)
	if err != nil {
		g.metrics.RecordOutcome(metrics.OutcomeInternalError)
		return nil, err
	}

	return g.Generate(ctx, prompt)
}

// Generate runs a single completion for prompt and parses the result.
func (g *RecipeGenerator) Generate(ctx context.Context, prompt string) (*types.Recipe, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.llm.GenerateContent(ctx, prompt)
	g.metrics.ObserveModelLatency(time.Since(start))
	if err != nil {
		g.metrics.RecordOutcome(metrics.OutcomeUpstreamError)
		return nil, &UpstreamError{Err: err}
	}

	recipe, err := ParseRecipe(raw)
	if err != nil {
		g.metrics.RecordOutcome(metrics.OutcomeParseError)
		return nil, err
	}

	g.metrics.RecordOutcome(metrics.OutcomeSuccess)
	g.logger.Debug("recipe generated",
		zap.String("dish", recipe.DishName),
		zap.Duration("latency", time.Since(start)),
	)
	return recipe, nil
}

// CleanModelText removes markdown code fences the model may wrap around its
// JSON and trims surrounding whitespace.
func CleanModelText(raw string) string {
	return strings.TrimSpace(fenceStripper.Replace(raw))
}

// ParseRecipe decodes cleaned model output into a Recipe and checks that
// every required field is present. Client-owned fields are cleared.
func ParseRecipe(raw string) (*types.Recipe, error) {
	var recipe types.Recipe
	if err := json.Unmarshal([]byte(CleanModelText(raw)), &recipe); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	if err := recipeValidator.Struct(&recipe); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			err = fmt.Errorf("field %s failed %q check", fieldErrs[0].Namespace(), fieldErrs[0].Tag())
		}
		return nil, &ParseError{Raw: raw, Err: err}
	}

	recipe.ID = ""
	recipe.MoodUsed = ""
	recipe.DateSaved = ""
	return &recipe, nil
}
