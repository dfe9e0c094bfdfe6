package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// FavoritesKey is the storage key holding the JSON array of saved recipes.
const FavoritesKey = "favoriteRecipes"

// Favorites keeps the saved recipe list in local storage, newest first,
// at most one entry per dish name.
type Favorites struct {
	store *LocalStorage
	now   func() time.Time

	mu sync.Mutex
}

// NewFavorites creates a favorites list over store
func NewFavorites(store *LocalStorage) *Favorites {
	return &Favorites{store: store, now: time.Now}
}

// Load returns the saved recipes. A missing key is an empty list.
func (f *Favorites) Load() ([]types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Add saves recipe unless one with the same dish name is already saved.
// It returns the updated list.
func (f *Favorites) Add(recipe types.Recipe) ([]types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, err := f.load()
	if err != nil {
		return nil, err
	}
	return f.add(list, recipe)
}

// Remove deletes the recipe with the given id and returns the updated list
func (f *Favorites) Remove(id string) ([]types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, err := f.load()
	if err != nil {
		return nil, err
	}
	return f.remove(list, id)
}

// Toggle unsaves recipe when its dish name is saved and saves it otherwise.
// saved reports the resulting state.
func (f *Favorites) Toggle(recipe types.Recipe) (saved bool, list []types.Recipe, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		return false, nil, err
	}
	if i := indexByDish(current, recipe.DishName); i >= 0 {
		list, err = f.remove(current, current[i].ID)
		return false, list, err
	}
	list, err = f.add(current, recipe)
	return true, list, err
}

// IsFavorite reports whether a recipe with dishName is saved
func (f *Favorites) IsFavorite(dishName string) (bool, error) {
	list, err := f.Load()
	if err != nil {
		return false, err
	}
	return indexByDish(list, dishName) >= 0, nil
}

func (f *Favorites) add(list []types.Recipe, recipe types.Recipe) ([]types.Recipe, error) {
	if indexByDish(list, recipe.DishName) >= 0 {
		return list, nil
	}
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	recipe.DateSaved = f.now().UTC().Format(time.RFC3339)

	list = append([]types.Recipe{recipe}, list...)
	return list, f.save(list)
}

func (f *Favorites) remove(list []types.Recipe, id string) ([]types.Recipe, error) {
	kept := make([]types.Recipe, 0, len(list))
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(list) {
		return list, nil
	}
	return kept, f.save(kept)
}

func (f *Favorites) load() ([]types.Recipe, error) {
	raw, ok, err := f.store.GetItem(FavoritesKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []types.Recipe{}, nil
	}

	var list []types.Recipe
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	if list == nil {
		list = []types.Recipe{}
	}
	return list, nil
}

func (f *Favorites) save(list []types.Recipe) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	return f.store.SetItem(FavoritesKey, string(data))
}

func indexByDish(list []types.Recipe, dishName string) int {
	for i, r := range list {
		if r.DishName == dishName {
			return i
		}
	}
	return -1
}
