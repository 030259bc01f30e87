package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"github.com/mealcraft/mealcraft-api/internal/testutil"
)

func setupShareTestRouter(store *testutil.MockRecipeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.EnvVars.PublicBaseURL = "https://mealcraft.app"
	handler := NewShareHandler(
		service.NewLibraryService(cfg, store),
		service.NewShareService(cfg),
	)

	r := gin.New()
	r.GET("/v1/recipes/:recipe_id/share", handler.GetShareLinks)
	return r
}

func TestGetShareLinks(t *testing.T) {
	store := testutil.NewMockRecipeStore()
	recipe := testutil.TestRecipe()
	if err := store.SaveRecipe(context.Background(), 1, recipe); err != nil {
		t.Fatalf("seed save returned error: %v", err)
	}
	r := setupShareTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/recipes/"+recipe.ID+"/share", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Share service.ShareLinks `json:"share"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Share.URL != "https://mealcraft.app/#recipe-"+recipe.ID {
		t.Errorf("unexpected deep link: %q", resp.Share.URL)
	}
	if !strings.HasPrefix(resp.Share.Twitter, "https://twitter.com/intent/tweet?") {
		t.Errorf("unexpected twitter link: %q", resp.Share.Twitter)
	}
}

func TestGetShareLinks_RecipeNotFound(t *testing.T) {
	r := setupShareTestRouter(testutil.NewMockRecipeStore())

	req := httptest.NewRequest(http.MethodGet, "/v1/recipes/recipe-nope/share", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
