package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mealcraft/mealcraft-api/internal/models"
)

// FileStore keeps every user's library in one JSON document on disk. Each
// operation is a read-modify-write of the whole file under a mutex, which
// is plenty for the single-process deployments this adapter targets.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by the JSON file at path. The
// file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// fileDoc is the on-disk document: user ID (as string, JSON keys must be
// strings) to that user's saved recipes.
type fileDoc struct {
	Users map[string][]storedRecipe `json:"users"`
}

// storedRecipe wraps a recipe with its library metadata.
type storedRecipe struct {
	models.Recipe
	SavedAt time.Time `json:"savedAt"`
}

func (f *FileStore) load() (*fileDoc, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &fileDoc{Users: make(map[string][]storedRecipe)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read recipe store: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse recipe store: %w", err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string][]storedRecipe)
	}
	return &doc, nil
}

func (f *FileStore) save(doc *fileDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recipe store: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create recipe store dir: %w", err)
		}
	}
	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated store behind.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write recipe store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace recipe store: %w", err)
	}
	return nil
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// SaveRecipe upserts the recipe into the user's library. An existing entry
// keeps its saved-at time and, when the incoming document carries no
// rating, its rating and comment.
func (f *FileStore) SaveRecipe(ctx context.Context, userID uint, recipe *models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	key := userKey(userID)
	recipes := doc.Users[key]
	for i := range recipes {
		if recipes[i].ID == recipe.ID {
			merged := storedRecipe{Recipe: *recipe, SavedAt: recipes[i].SavedAt}
			merged.UserRating, merged.UserComment = mergeRating(
				recipes[i].UserRating, recipes[i].UserComment,
				recipe.UserRating, recipe.UserComment,
			)
			recipes[i] = merged
			doc.Users[key] = recipes
			return f.save(doc)
		}
	}

	doc.Users[key] = append(recipes, storedRecipe{Recipe: *recipe, SavedAt: time.Now().UTC()})
	return f.save(doc)
}

// GetRecipe scans every user's library for the recipe ID.
func (f *FileStore) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	for _, recipes := range doc.Users {
		for i := range recipes {
			if recipes[i].ID == recipeID {
				recipe := recipes[i].Recipe
				return &recipe, nil
			}
		}
	}
	return nil, NewNotFoundError("recipe not found: " + recipeID)
}

// ListRecipes returns the user's recipes, most recently saved first.
func (f *FileStore) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	stored := doc.Users[userKey(userID)]
	sorted := make([]storedRecipe, len(stored))
	copy(sorted, stored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SavedAt.After(sorted[j].SavedAt)
	})

	recipes := make([]models.Recipe, len(sorted))
	for i := range sorted {
		recipes[i] = sorted[i].Recipe
	}
	return recipes, nil
}

// DeleteRecipe removes the recipe from the user's library; missing IDs
// are a no-op.
func (f *FileStore) DeleteRecipe(ctx context.Context, userID uint, recipeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	key := userKey(userID)
	recipes := doc.Users[key]
	for i := range recipes {
		if recipes[i].ID == recipeID {
			doc.Users[key] = append(recipes[:i], recipes[i+1:]...)
			return f.save(doc)
		}
	}
	return nil
}

// UpdateRating sets the rating and comment on a saved recipe.
func (f *FileStore) UpdateRating(ctx context.Context, userID uint, recipeID string, rating int, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	key := userKey(userID)
	recipes := doc.Users[key]
	for i := range recipes {
		if recipes[i].ID == recipeID {
			recipes[i].UserRating = rating
			recipes[i].UserComment = comment
			doc.Users[key] = recipes
			return f.save(doc)
		}
	}
	return NewNotFoundError("recipe not found: " + recipeID)
}

// IsSaved reports whether the recipe is in the user's library.
func (f *FileStore) IsSaved(ctx context.Context, userID uint, recipeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return false, err
	}

	for _, r := range doc.Users[userKey(userID)] {
		if r.ID == recipeID {
			return true, nil
		}
	}
	return false, nil
}
