package ai

import "context"

// TextProvider handles recipe generation (Claude). The raw model text is
// returned as-is; parsing and post-processing live in the service layer.
type TextProvider interface {
	GenerateRecipe(ctx context.Context, req RecipeRequest) (string, error)
}

// VisionProvider handles ingredient detection from photos (Claude vision).
type VisionProvider interface {
	DetectIngredients(ctx context.Context, imageData []byte) (string, error)
}

// SpeechProvider handles speech-to-text (Whisper).
type SpeechProvider interface {
	TranscribeAudio(ctx context.Context, audioData []byte) (string, error)
}

// RecipeRequest holds parameters for generating a new recipe.
type RecipeRequest struct {
	Ingredients []string
	Difficulty  string
	AvoidTitles []string
}
