package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"github.com/mealcraft/mealcraft-api/internal/testutil"
)

// validRecipeJSON is a minimal well-formed model response for the egg and
// bread scenario.
const validRecipeJSON = `{
	"title": "Simple French Toast",
	"prepTime": 15,
	"servings": 2,
	"ingredients": [{"name": "egg", "quantity": 2, "unit": ""}],
	"instructions": [{"step": 1, "description": "Cook it.", "duration": 0}]
}`

// attachTestUser injects an authenticated user the way the token
// middleware would.
func attachTestUser(c *gin.Context) {
	c.Set("user", testutil.TestUser())
}

func setupRecipeTestRouter(mock *testutil.MockTextProvider, store *testutil.MockRecipeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	handler := NewRecipeHandler(
		service.NewRecipeService(cfg, mock),
		service.NewLibraryService(cfg, store),
	)

	r := gin.New()
	r.POST("/v1/recipes/generate", attachTestUser, handler.GenerateRecipe)
	r.GET("/v1/recipes", attachTestUser, handler.ListRecipes)
	r.POST("/v1/recipes", attachTestUser, handler.SaveRecipe)
	r.GET("/v1/recipes/:recipe_id", handler.GetRecipe)
	r.GET("/v1/recipes/:recipe_id/saved", attachTestUser, handler.IsSaved)
	r.DELETE("/v1/recipes/:recipe_id", attachTestUser, handler.DeleteRecipe)
	r.PUT("/v1/recipes/:recipe_id/rating", attachTestUser, handler.UpdateRating)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateRecipe_Success(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return validRecipeJSON, nil
		},
	}
	r := setupRecipeTestRouter(mock, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodPost, "/v1/recipes/generate", service.GenerateRequest{
		Ingredients: []string{"egg", "bread"},
		Difficulty:  "easy",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Recipe.Title != "Simple French Toast" {
		t.Errorf("unexpected title: %q", resp.Recipe.Title)
	}
	if resp.Recipe.ID == "" {
		t.Error("expected generated recipe ID")
	}
}

func TestGenerateRecipe_NoIngredients(t *testing.T) {
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodPost, "/v1/recipes/generate", service.GenerateRequest{
		Ingredients: []string{},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateRecipe_MalformedModelResponse(t *testing.T) {
	mock := &testutil.MockTextProvider{
		GenerateRecipeFunc: func(ctx context.Context, req ai.RecipeRequest) (string, error) {
			return "I'd rather talk about the weather.", nil
		},
	}
	r := setupRecipeTestRouter(mock, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodPost, "/v1/recipes/generate", service.GenerateRequest{
		Ingredients: []string{"egg"},
	})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestSaveRecipe_Created(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	w := doJSON(t, r, http.MethodPost, "/v1/recipes", testutil.TestRecipe())

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	saved, _ := store.IsSaved(context.Background(), 1, testutil.TestRecipe().ID)
	if !saved {
		t.Error("recipe not in store after save")
	}
}

func TestSaveRecipe_MissingID(t *testing.T) {
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, testutil.NewMockRecipeStore())

	recipe := testutil.TestRecipe()
	recipe.ID = ""
	w := doJSON(t, r, http.MethodPost, "/v1/recipes", recipe)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSaveRecipe_Duplicate(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	if w := doJSON(t, r, http.MethodPost, "/v1/recipes", testutil.TestRecipe()); w.Code != http.StatusCreated {
		t.Fatalf("first save status = %d", w.Code)
	}

	nearDuplicate := testutil.TestRecipe()
	nearDuplicate.ID = "recipe-1700000000001-zzz999aaa"
	w := doJSON(t, r, http.MethodPost, "/v1/recipes", nearDuplicate)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestGetRecipe_PublicLookup(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	recipe := testutil.TestRecipe()
	if err := store.SaveRecipe(context.Background(), 1, recipe); err != nil {
		t.Fatalf("seed save returned error: %v", err)
	}
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	// No auth middleware on this route.
	w := doJSON(t, r, http.MethodGet, "/v1/recipes/"+recipe.ID, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodGet, "/v1/recipes/recipe-nope", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestIsSaved(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	recipe := testutil.TestRecipe()
	store.SaveRecipe(context.Background(), 1, recipe)
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	w := doJSON(t, r, http.MethodGet, "/v1/recipes/"+recipe.ID+"/saved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Saved bool `json:"saved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Saved {
		t.Error("expected saved = true for a saved recipe")
	}

	// Unsaved IDs report false rather than 404, so the client can render
	// the save button on any shared recipe.
	w = doJSON(t, r, http.MethodGet, "/v1/recipes/recipe-nope/saved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unsaved status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Saved {
		t.Error("expected saved = false for an unsaved recipe")
	}
}

func TestDeleteRecipe_NoContent(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	recipe := testutil.TestRecipe()
	store.SaveRecipe(context.Background(), 1, recipe)
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	w := doJSON(t, r, http.MethodDelete, "/v1/recipes/"+recipe.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	// Deleting a recipe that isn't saved still succeeds.
	w = doJSON(t, r, http.MethodDelete, "/v1/recipes/recipe-nope", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat delete status = %d, want 204", w.Code)
	}
}

func TestUpdateRating_Success(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	recipe := testutil.TestRecipe()
	store.SaveRecipe(context.Background(), 1, recipe)
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	w := doJSON(t, r, http.MethodPut, "/v1/recipes/"+recipe.ID+"/rating", map[string]interface{}{
		"rating":  5,
		"comment": "Family favorite",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateRating_ZeroRating(t *testing.T) {
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodPut, "/v1/recipes/recipe-1/rating", map[string]interface{}{
		"rating": 0,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateRating_UnsavedRecipe(t *testing.T) {
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, testutil.NewMockRecipeStore())

	w := doJSON(t, r, http.MethodPut, "/v1/recipes/recipe-nope/rating", map[string]interface{}{
		"rating": 3,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListRecipes(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	store.SaveRecipe(context.Background(), 1, testutil.TestRecipe())
	r := setupRecipeTestRouter(&testutil.MockTextProvider{}, store)

	w := doJSON(t, r, http.MethodGet, "/v1/recipes", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Recipes) != 1 {
		t.Errorf("expected 1 recipe, got %d", len(resp.Recipes))
	}
}
