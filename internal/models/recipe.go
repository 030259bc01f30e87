package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Difficulty is the type for the recipe difficulty enum.
type Difficulty string

// Difficulty enum values.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Ingredient is a single metric-normalized ingredient in a recipe.
// Quantity is rounded to two decimal places; Unit is one of g, ml, cm,
// kg, L, or empty for countable items.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Instruction is a single numbered preparation step. Step numbers are
// 1-based and contiguous. Duration is in minutes; 0 means no timer.
type Instruction struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// Recipe is the full recipe document exchanged with clients and persisted
// by the recipe stores.
type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	PrepTime     int          `json:"prepTime"`
	Difficulty   Difficulty   `json:"difficulty"`
	Servings     int          `json:"servings"`
	Ingredients  Ingredients  `json:"ingredients" gorm:"type:jsonb"`
	Instructions Instructions `json:"instructions" gorm:"type:jsonb"`
	CreatedAt    time.Time    `json:"createdAt"`
	UserRating   int          `json:"userRating,omitempty"`
	UserComment  string       `json:"userComment,omitempty"`
}

// NewRecipeID returns a fresh recipe identifier of the form
// recipe-<unix-ms>-<9 random lowercase alphanumerics>.
func NewRecipeID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("recipe-%d-%s", time.Now().UnixMilli(), suffix)
}

// Ingredients is a slice of Ingredient.
// This is a workaround for GORM to embed a slice of structs into a JSONB field.
type Ingredients []Ingredient

// Scan is a GORM hook that scans jsonb into Ingredients.
func (j *Ingredients) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := Ingredients{}
	err := json.Unmarshal(bytes, &result)
	*j = Ingredients(result)

	return err
}

// Value is a GORM hook that returns json value of Ingredients.
func (j Ingredients) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Instructions is a slice of Instruction with the same JSONB embedding
// workaround as Ingredients.
type Instructions []Instruction

// Scan is a GORM hook that scans jsonb into Instructions.
func (j *Instructions) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := Instructions{}
	err := json.Unmarshal(bytes, &result)
	*j = Instructions(result)

	return err
}

// Value is a GORM hook that returns json value of Instructions.
func (j Instructions) Value() (driver.Value, error) {
	return json.Marshal(j)
}
