package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/service"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

// User-facing messages. Upstream details are logged, never returned.
const (
	MsgMissingIngredients = "Anak, wala ka namang binigay na ingredients."
	MsgGenerationFailed   = "Pasensya na anak, sumakit ulo ni Mama. Try mo ulit maya-maya."
)

var registerValidators sync.Once

// RecipeHandler serves recipe generation requests
type RecipeHandler struct {
	generator service.IRecipeGenerator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(generator service.IRecipeGenerator, m *metrics.Metrics, logger *zap.Logger) *RecipeHandler {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", notBlank)
		}
	})
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeHandler{
		generator: generator,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterRoutes registers the generation route on router
func (h *RecipeHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/generate-recipe", h.GenerateRecipe)
}

// GenerateRecipe handles POST /api/generate-recipe
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordOutcome(metrics.OutcomeValidationError)
		h.logger.Debug("rejected generation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: MsgMissingIngredients})
		return
	}

	recipe, err := h.generator.GenerateRecipe(c.Request.Context(), req.Ingredients, types.Mood(req.Mood))
	if err != nil {
		if errors.Is(err, service.ErrEmptyIngredients) {
			h.metrics.RecordOutcome(metrics.OutcomeValidationError)
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: MsgMissingIngredients})
			return
		}
		h.logGenerationError(err, req)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: MsgGenerationFailed})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) logGenerationError(err error, req types.RecipeRequest) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("mood", req.Mood),
		zap.Int("ingredients_len", len(req.Ingredients)),
	}

	var upstream *service.UpstreamError
	var parseErr *service.ParseError
	switch {
	case errors.As(err, &upstream):
		fields = append(fields, zap.String("kind", "upstream"))
	case errors.As(err, &parseErr):
		fields = append(fields, zap.String("kind", "parse"), zap.String("raw", parseErr.Raw))
	default:
		fields = append(fields, zap.String("kind", "internal"))
	}
	h.logger.Error("recipe generation failed", fields...)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
