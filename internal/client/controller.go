package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// State is the phase of the current generation cycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyIngredients = errors.New("ingredients are required")
	ErrBusy             = errors.New("a recipe is already being generated")
	ErrNoRecipe         = errors.New("no recipe to act on")
	ErrNoFavorites      = errors.New("favorites are not configured")
)

// Snapshot is a copy of the controller's visible state
type Snapshot struct {
	State  State
	Recipe *types.Recipe
	Error  string
}

// Controller drives one generation cycle at a time against the recipe API
// and hands the result to the narrator and the favorites list.
type Controller struct {
	api       RecipeAPI
	narrator  *Narrator
	favorites *Favorites
	logger    *zap.Logger

	mu       sync.Mutex
	cycle    uint64
	state    State
	recipe   *types.Recipe
	errMsg   string
	cancel   context.CancelFunc
	inFlight chan struct{}
}

// NewController creates a controller. narrator and favorites may be nil.
func NewController(api RecipeAPI, narrator *Narrator, favorites *Favorites, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		api:       api,
		narrator:  narrator,
		favorites: favorites,
		logger:    logger,
	}
}

// Submit starts a generation cycle and blocks until it resolves. On failure
// the returned error is the cause and Snapshot().Error holds the message to
// show.
func (c *Controller) Submit(ctx context.Context, ingredients string, mood types.Mood) (*types.Recipe, error) {
	if strings.TrimSpace(ingredients) == "" {
		return nil, ErrEmptyIngredients
	}
	mood = mood.Normalize()

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.narrator.Stop()
	c.cycle++
	cycle := c.cycle
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancel = cancel
	prev := c.inFlight
	done := make(chan struct{})
	c.inFlight = done
	c.state = StateSubmitting
	c.recipe = nil
	c.errMsg = ""
	c.mu.Unlock()
	defer close(done)

	// A reset call may still be unwinding; never overlap it.
	var recipe *types.Recipe
	var err error
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	if err == nil {
		recipe, err = c.api.GenerateRecipe(ctx, ingredients, mood)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cycle != cycle {
		return nil, context.Canceled
	}
	c.cancel = nil

	if err != nil {
		c.state = StateFailed
		c.errMsg = failureMessage(err)
		c.logger.Warn("recipe generation failed", zap.Error(err), zap.String("mood", string(mood)))
		return nil, err
	}

	recipe.ID = uuid.NewString()
	recipe.MoodUsed = string(mood)
	c.state = StateSucceeded
	c.recipe = recipe
	return cloneRecipe(recipe), nil
}

// Reset returns to idle, cancelling any request in flight and dropping the
// current result and narration.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.narrator.Stop()
	c.cycle++
	c.state = StateIdle
	c.recipe = nil
	c.errMsg = ""
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Recipe: cloneRecipe(c.recipe), Error: c.errMsg}
}

// ShareText renders the current recipe for the clipboard
func (c *Controller) ShareText() (string, error) {
	recipe := c.Snapshot().Recipe
	if recipe == nil {
		return "", ErrNoRecipe
	}
	return ShareText(*recipe), nil
}

// Narrate reads the current recipe aloud in the voice of its mood
func (c *Controller) Narrate(onDone func()) error {
	if c.narrator == nil {
		return errors.New("narration is not configured")
	}
	recipe := c.Snapshot().Recipe
	if recipe == nil {
		return ErrNoRecipe
	}
	c.narrator.Speak(NarrationText(*recipe), types.Mood(recipe.MoodUsed), onDone)
	return nil
}

// ToggleFavorite saves or unsaves the current recipe
func (c *Controller) ToggleFavorite() (saved bool, err error) {
	if c.favorites == nil {
		return false, ErrNoFavorites
	}
	recipe := c.Snapshot().Recipe
	if recipe == nil {
		return false, ErrNoRecipe
	}
	saved, _, err = c.favorites.Toggle(*recipe)
	return saved, err
}

func failureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgKitchenProblem
}

func cloneRecipe(r *types.Recipe) *types.Recipe {
	if r == nil {
		return nil
	}
	out := *r
	out.IngredientsList = append([]string(nil), r.IngredientsList...)
	out.Steps = append([]string(nil), r.Steps...)
	return &out
}
