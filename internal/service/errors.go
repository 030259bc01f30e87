package service

import "errors"

// Sentinel errors returned by the services. Handlers match these with
// errors.Is to pick status codes and user-facing messages.
var (
	// ErrNoIngredients is returned when a generation request carries no
	// usable ingredient names.
	ErrNoIngredients = errors.New("at least one ingredient is required")

	// ErrProfaneInput is returned when ingredient input contains
	// inappropriate language.
	ErrProfaneInput = errors.New("ingredient input contains inappropriate language")

	// ErrMalformedResponse is returned when the model output cannot be
	// parsed into a recipe or ingredient list.
	ErrMalformedResponse = errors.New("model response could not be parsed")

	// ErrNoValidRecipe is returned when post-processing filters out every
	// generated ingredient.
	ErrNoValidRecipe = errors.New("no usable recipe after filtering")

	// ErrDuplicateTitle is returned when the generated title collides with
	// an avoid-title even after one regeneration attempt.
	ErrDuplicateTitle = errors.New("generated recipe title duplicates an existing title")

	// ErrNotAnImage is returned before any network call when the uploaded
	// payload is not an image.
	ErrNotAnImage = errors.New("uploaded file is not an image")

	// ErrNonFoodImage is returned when the image does not appear to
	// contain food.
	ErrNonFoodImage = errors.New("image does not appear to contain food")

	// ErrNoIngredientsDetected is returned when detection finds nothing.
	ErrNoIngredientsDetected = errors.New("no ingredients detected in image")

	// ErrDuplicateRecipe is returned when saving a recipe that closely
	// matches one already in the user's library.
	ErrDuplicateRecipe = errors.New("a very similar recipe is already saved")

	// ErrInvalidRating is returned when a rating is outside 1 to 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
