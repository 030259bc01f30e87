package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/models"
)

// ShareService composes social sharing links for recipes.
type ShareService struct {
	Cfg *config.Config
}

// NewShareService creates a new ShareService.
func NewShareService(cfg *config.Config) *ShareService {
	return &ShareService{Cfg: cfg}
}

// ShareLinks holds the deep link plus prefilled share URLs for a recipe.
type ShareLinks struct {
	URL      string `json:"url"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

// Links builds the share links for a recipe. The recipe resolves at
// <base>/#recipe-<id> so the web client can open it directly.
func (s *ShareService) Links(recipe *models.Recipe) (*ShareLinks, error) {
	base := strings.TrimRight(s.Cfg.EnvVars.PublicBaseURL, "/")
	if !govalidator.IsURL(base) {
		return nil, fmt.Errorf("invalid public base URL: %q", base)
	}

	link := fmt.Sprintf("%s/#recipe-%s", base, recipe.ID)
	text := fmt.Sprintf("Check out this recipe: %s", recipe.Title)

	body := text + "\n" + link
	if len(recipe.Ingredients) > 0 {
		names := make([]string, len(recipe.Ingredients))
		for i, ing := range recipe.Ingredients {
			names[i] = ing.Name
		}
		body += "\n\nIngredients: " + strings.Join(names, ", ")
	}

	return &ShareLinks{
		URL:      link,
		Twitter:  "https://twitter.com/intent/tweet?text=" + url.QueryEscape(text) + "&url=" + url.QueryEscape(link),
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(link),
		WhatsApp: "https://wa.me/?text=" + url.QueryEscape(text+" "+link),
		Email:    "mailto:?subject=" + url.QueryEscape(recipe.Title) + "&body=" + url.QueryEscape(body),
	}, nil
}
