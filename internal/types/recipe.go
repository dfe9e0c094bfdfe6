package types

import "strings"

// Mood is the situation the user is cooking in. Unknown values are passed
// to the model as free-form text.
type Mood string

const (
	MoodAnything Mood = "Kahit ano"
	MoodBroke    Mood = "Petsa de Peligro"
	MoodInAHurry Mood = "Nagmamadali"
	MoodSoupy    Mood = "Masabaw"
	MoodBarChow  Mood = "Pulutan"
	MoodHealthy  Mood = "Healthy"
)

// DefaultMood is used when the request carries no mood.
const DefaultMood = MoodAnything

// Moods lists the selectable moods in display order.
var Moods = []Mood{MoodAnything, MoodBroke, MoodInAHurry, MoodSoupy, MoodBarChow, MoodHealthy}

// Normalize trims the mood and falls back to the default when blank.
func (m Mood) Normalize() Mood {
	trimmed := Mood(strings.TrimSpace(string(m)))
	if trimmed == "" {
		return DefaultMood
	}
	return trimmed
}

// RecipeRequest is the body accepted by the generation endpoint.
type RecipeRequest struct {
	Ingredients string `json:"ingredients" binding:"required,notblank"`
	Mood        string `json:"mood,omitempty"`
}

// Recipe is the structured answer the model must produce. ID, MoodUsed and
// DateSaved are owned by the client and never set by the server.
type Recipe struct {
	ID              string   `json:"id,omitempty"`
	DishName        string   `json:"dishName" validate:"required"`
	MomMessage      string   `json:"momMessage" validate:"required"`
	IngredientsList []string `json:"ingredientsList" validate:"required,min=1,dive,required"`
	Steps           []string `json:"steps" validate:"required,min=1,dive,required"`
	CookingTime     string   `json:"cookingTime" validate:"required"`
	Difficulty      string   `json:"difficulty" validate:"required"`
	MoodUsed        string   `json:"moodUsed,omitempty"`
	DateSaved       string   `json:"dateSaved,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
