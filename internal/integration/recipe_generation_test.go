package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/anong-ulam/backend/internal/api"
	"github.com/pageza/anong-ulam/backend/internal/client"
	"github.com/pageza/anong-ulam/backend/internal/database"
	"github.com/pageza/anong-ulam/backend/internal/metrics"
	"github.com/pageza/anong-ulam/backend/internal/mocks"
	"github.com/pageza/anong-ulam/backend/internal/router"
	"github.com/pageza/anong-ulam/backend/internal/service"
	"github.com/pageza/anong-ulam/backend/internal/types"
)

const tinolaJSON = `{
  "dishName": "Tinolang Manok",
  "momMessage": "Mainit na sabaw para sa malamig na gabi, anak.",
  "ingredientsList": ["1/2 kilo manok", "1 sayote", "luya"],
  "steps": ["Igisa ang luya.", "Ilagay ang manok.", "Lagyan ng tubig at sayote."],
  "cookingTime": "45 mins",
  "difficulty": "Easy"
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type stack struct {
	server    *httptest.Server
	registry  *prometheus.Registry
	favorites *client.Favorites
}

func newStack(t *testing.T, llm service.TextGenerator) *stack {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	generator := service.NewRecipeGenerator(llm, 2*time.Second, m, nil)
	handler := router.SetupRouter(api.NewRecipeHandler(generator, m, nil), router.Options{
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, err := database.OpenLocalStore(filepath.Join(t.TempDir(), "local.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return &stack{
		server:    srv,
		registry:  reg,
		favorites: client.NewFavorites(client.NewLocalStorage(db)),
	}
}

func (s *stack) outcomeCount(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := s.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "anong_ulam_generations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func (s *stack) controller() *client.Controller {
	return client.NewController(client.NewHTTPClient(s.server.URL, nil), nil, s.favorites, nil)
}

func TestGenerateAndFavoriteThroughHTTP(t *testing.T) {
	llm := new(mocks.MockTextGenerator)
	llm.On("GenerateContent", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "manok, sayote") && strings.Contains(p, "Masabaw")
	})).Return("```json\n"+tinolaJSON+"\n```", nil).Once()
	s := newStack(t, llm)
	ctrl := s.controller()

	recipe, err := ctrl.Submit(context.Background(), "manok, sayote", types.MoodSoupy)
	require.NoError(t, err)
	assert.Equal(t, "Tinolang Manok", recipe.DishName)
	assert.Equal(t, "Masabaw", recipe.MoodUsed)
	assert.NotEmpty(t, recipe.ID)

	saved, err := ctrl.ToggleFavorite()
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := s.favorites.Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recipe.IngredientsList, list[0].IngredientsList)
	assert.Equal(t, recipe.Steps, list[0].Steps)
	assert.NotEmpty(t, list[0].DateSaved)

	assert.Equal(t, float64(1), s.outcomeCount(t, metrics.OutcomeSuccess))
	llm.AssertExpectations(t)
}

func TestFailuresSurfaceAsMomMessages(t *testing.T) {
	llm := new(mocks.MockTextGenerator)
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return("Sorry, I can only help with cooking.", nil).Once()
	s := newStack(t, llm)
	ctrl := s.controller()

	_, err := ctrl.Submit(context.Background(), "bato", types.MoodAnything)
	require.Error(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, client.StateFailed, snap.State)
	assert.Equal(t, api.MsgGenerationFailed, snap.Error)
	assert.Equal(t, float64(1), s.outcomeCount(t, metrics.OutcomeParseError))
}

func TestLiveGemini(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" || testing.Short() {
		t.Skip("GEMINI_API_KEY not set")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	ctx := context.Background()
	gemini, err := service.NewGeminiClient(ctx, key, model)
	require.NoError(t, err)
	defer gemini.Close()

	s := newStack(t, gemini)
	recipe, err := s.controller().Submit(ctx, "itlog, kamatis", types.MoodInAHurry)
	require.NoError(t, err)
	assert.NotEmpty(t, recipe.DishName)
	assert.NotEmpty(t, recipe.Steps)
}
