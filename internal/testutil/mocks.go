package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/repository"
)

// --- MockTextProvider ---

// MockTextProvider is a mock implementation of ai.TextProvider.
type MockTextProvider struct {
	GenerateRecipeFunc func(ctx context.Context, req ai.RecipeRequest) (string, error)
}

func (m *MockTextProvider) GenerateRecipe(ctx context.Context, req ai.RecipeRequest) (string, error) {
	if m.GenerateRecipeFunc != nil {
		return m.GenerateRecipeFunc(ctx, req)
	}
	return "", fmt.Errorf("GenerateRecipe not configured")
}

// --- MockVisionProvider ---

// MockVisionProvider is a mock implementation of ai.VisionProvider.
type MockVisionProvider struct {
	DetectIngredientsFunc func(ctx context.Context, imageData []byte) (string, error)
}

func (m *MockVisionProvider) DetectIngredients(ctx context.Context, imageData []byte) (string, error) {
	if m.DetectIngredientsFunc != nil {
		return m.DetectIngredientsFunc(ctx, imageData)
	}
	return "", fmt.Errorf("DetectIngredients not configured")
}

// --- MockSpeechProvider ---

// MockSpeechProvider is a mock implementation of ai.SpeechProvider.
type MockSpeechProvider struct {
	TranscribeAudioFunc func(ctx context.Context, audioData []byte) (string, error)
}

func (m *MockSpeechProvider) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	if m.TranscribeAudioFunc != nil {
		return m.TranscribeAudioFunc(ctx, audioData)
	}
	return "", fmt.Errorf("TranscribeAudio not configured")
}

// --- MockRecipeStore ---

// savedEntry is one saved recipe with its bookkeeping fields.
type savedEntry struct {
	recipe  models.Recipe
	savedAt time.Time
}

// MockRecipeStore is an in-memory mock implementation of
// repository.RecipeStore keyed by user then recipe ID.
type MockRecipeStore struct {
	mu      sync.Mutex
	entries map[uint]map[string]*savedEntry

	// Error overrides: set these to force specific methods to return errors.
	SaveRecipeErr   error
	GetRecipeErr    error
	ListRecipesErr  error
	DeleteRecipeErr error
	UpdateRatingErr error
}

// NewMockRecipeStore creates a new MockRecipeStore with initialized maps.
func NewMockRecipeStore() *MockRecipeStore {
	return &MockRecipeStore{
		entries: make(map[uint]map[string]*savedEntry),
	}
}

func (m *MockRecipeStore) SaveRecipe(ctx context.Context, userID uint, recipe *models.Recipe) error {
	if m.SaveRecipeErr != nil {
		return m.SaveRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]*savedEntry)
	}
	if existing, ok := m.entries[userID][recipe.ID]; ok {
		merged := *recipe
		if merged.UserRating == 0 {
			merged.UserRating = existing.recipe.UserRating
			merged.UserComment = existing.recipe.UserComment
		}
		existing.recipe = merged
		return nil
	}
	m.entries[userID][recipe.ID] = &savedEntry{
		recipe:  *recipe,
		savedAt: time.Now(),
	}
	return nil
}

func (m *MockRecipeStore) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	if m.GetRecipeErr != nil {
		return nil, m.GetRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, userEntries := range m.entries {
		if e, ok := userEntries[recipeID]; ok {
			r := e.recipe
			return &r, nil
		}
	}
	return nil, repository.NewNotFoundError("recipe")
}

func (m *MockRecipeStore) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	if m.ListRecipesErr != nil {
		return nil, m.ListRecipesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]*savedEntry, 0, len(m.entries[userID]))
	for _, e := range m.entries[userID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].savedAt.After(entries[j].savedAt)
	})

	recipes := make([]models.Recipe, len(entries))
	for i, e := range entries {
		recipes[i] = e.recipe
	}
	return recipes, nil
}

func (m *MockRecipeStore) DeleteRecipe(ctx context.Context, userID uint, recipeID string) error {
	if m.DeleteRecipeErr != nil {
		return m.DeleteRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries[userID], recipeID)
	return nil
}

func (m *MockRecipeStore) UpdateRating(ctx context.Context, userID uint, recipeID string, rating int, comment string) error {
	if m.UpdateRatingErr != nil {
		return m.UpdateRatingErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID][recipeID]
	if !ok {
		return repository.NewNotFoundError("recipe")
	}
	e.recipe.UserRating = rating
	e.recipe.UserComment = comment
	return nil
}

func (m *MockRecipeStore) IsSaved(ctx context.Context, userID uint, recipeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[userID][recipeID]
	return ok, nil
}

// Compile-time interface checks.
var _ ai.TextProvider = (*MockTextProvider)(nil)
var _ ai.VisionProvider = (*MockVisionProvider)(nil)
var _ ai.SpeechProvider = (*MockSpeechProvider)(nil)
var _ repository.RecipeStore = (*MockRecipeStore)(nil)
