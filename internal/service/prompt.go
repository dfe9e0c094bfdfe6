package service

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

//go:embed prompts/recipe.tmpl
var recipePrompt string

var recipePromptTmpl = template.Must(template.New("recipe").Parse(recipePrompt))

// MoodRule is the behaviour the model must adopt for one mood.
type MoodRule struct {
	Mood        types.Mood
	Instruction string
}

// moodRules is ordered so the rendered prompt is stable.
var moodRules = []MoodRule{
	{types.MoodBroke, `Suggest a budget-friendly meal. Message: "Tipid-tipid muna tayo anak."`},
	{types.MoodInAHurry, `Suggest a quick recipe that takes less than 15 minutes. Message: "O heto, mabilis lang 'to."`},
	{types.MoodSoupy, `Suggest a soup-based dish. Message: "Mainit na sabaw para gumaan pakiramdam mo."`},
	{types.MoodBarChow, `Suggest something savory or fried. Message: "Inom na naman? O sige, heto pulutan."`},
	{types.MoodHealthy, `Suggest something with more vegetables or less oil.`},
}

// RuleFor returns the instruction for a mood, if it has one.
func RuleFor(mood types.Mood) (string, bool) {
	for _, r := range moodRules {
		if r.Mood == mood {
			return r.Instruction, true
		}
	}
	return "", false
}

type promptData struct {
	Ingredients string
	Mood        types.Mood
	Rules       []MoodRule
	ActiveRule  string
}

// BuildPrompt renders the generation prompt. Ingredients and mood are
// embedded verbatim; a blank mood becomes the default.
func BuildPrompt(ingredients string, mood types.Mood) (string, error) {
	mood = mood.Normalize()
	active, _ := RuleFor(mood)

	var buf bytes.Buffer
	if err := recipePromptTmpl.Execute(&buf, promptData{
		Ingredients: ingredients,
		Mood:        mood,
		Rules:       moodRules,
		ActiveRule:  active,
	}); err != nil {
		return "", fmt.Errorf("failed to render recipe prompt: %w", err)
	}
	return buf.String(), nil
}
