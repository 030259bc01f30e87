package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SavedRecipe is the Postgres row for a recipe saved to a user's library.
// The full document is stored as JSONB; ingredient names are duplicated
// into a text[] column so duplicate detection can read them without
// unpacking the document.
type SavedRecipe struct {
	ID              uint   `gorm:"primarykey"`
	UserID          uint   `gorm:"uniqueIndex:idx_user_recipe;not null"`
	RecipeID        string `gorm:"uniqueIndex:idx_user_recipe;index;not null"`
	Title           string
	Doc             RecipeDoc      `gorm:"type:jsonb"`
	IngredientNames pq.StringArray `gorm:"type:text[]"`
	Rating          int
	Comment         string
	SavedAt         time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// RecipeDoc wraps Recipe so it can be embedded as a JSONB column.
type RecipeDoc struct {
	Recipe
}

// Scan is a GORM hook that scans jsonb into a RecipeDoc.
func (j *RecipeDoc) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := RecipeDoc{}
	err := json.Unmarshal(bytes, &result)
	*j = result

	return err
}

// Value is a GORM hook that returns json value of a RecipeDoc.
func (j RecipeDoc) Value() (driver.Value, error) {
	return json.Marshal(j)
}
