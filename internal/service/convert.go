package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// metricConversion maps an imperial unit to its fixed metric factor and
// target unit. The same constants are quoted to the model in the
// generation prompt so text and quantities stay consistent.
type metricConversion struct {
	factor float64
	unit   string
}

var imperialConversions = map[string]metricConversion{
	"cup":        {240, "ml"},
	"cups":       {240, "ml"},
	"tbsp":       {15, "ml"},
	"tablespoon": {15, "ml"},
	"tsp":        {5, "ml"},
	"teaspoon":   {5, "ml"},
	"oz":         {28, "g"},
	"ounce":      {28, "g"},
	"lb":         {450, "g"},
	"lbs":        {450, "g"},
	"pound":      {450, "g"},
	"inch":       {2.5, "cm"},
	"inches":     {2.5, "cm"},
	"in":         {2.5, "cm"},
	"quart":      {950, "ml"},
	"qt":         {950, "ml"},
	"gallon":     {3800, "ml"},
	"gal":        {3800, "ml"},
}

// metricAliases normalizes long metric unit names to their short forms.
var metricAliases = map[string]string{
	"milliliter":  "ml",
	"milliliters": "ml",
	"millilitre":  "ml",
	"millilitres": "ml",
	"ml":          "ml",
	"liter":       "L",
	"liters":      "L",
	"litre":       "L",
	"litres":      "L",
	"l":           "L",
	"gram":        "g",
	"grams":       "g",
	"g":           "g",
	"kilogram":    "kg",
	"kilograms":   "kg",
	"kg":          "kg",
	"centimeter":  "cm",
	"centimeters": "cm",
	"centimetre":  "cm",
	"centimetres": "cm",
	"cm":          "cm",
}

// staples are pantry items stripped from generated ingredient lists. The
// model is told not to list them; this is the backstop for when it does.
var staples = []string{
	"salt", "pepper", "oil", "water", "butter",
	"flour", "sugar", "garlic", "spices", "seasoning",
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toMetric converts an imperial quantity to metric using the fixed
// conversion table. Metric units pass through with their names normalized;
// unknown units are dropped, leaving a bare count.
func toMetric(quantity float64, unit string) (float64, string) {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, ".")
	if u == "" {
		return round2(quantity), ""
	}
	if conv, ok := imperialConversions[u]; ok {
		return round2(quantity * conv.factor), conv.unit
	}
	if singular := strings.TrimSuffix(u, "s"); singular != u {
		if conv, ok := imperialConversions[singular]; ok {
			return round2(quantity * conv.factor), conv.unit
		}
	}
	if short, ok := metricAliases[u]; ok {
		return round2(quantity), short
	}
	return round2(quantity), ""
}

// isStaple reports whether an ingredient name refers to a pantry staple.
func isStaple(name string) bool {
	n := strings.ToLower(name)
	for _, s := range staples {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

// matchesSupplied reports whether a generated ingredient name traces back
// to one of the user-supplied ingredients. The match is a case-insensitive
// substring check in either direction, so "chicken breast" matches a
// supplied "chicken".
func matchesSupplied(name string, supplied []string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, s := range supplied {
		if strings.Contains(n, s) || strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var (
	imperialAmountRe = regexp.MustCompile(`(?i)(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?)\s*(cups?|tablespoons?|tbsp|teaspoons?|tsp|ounces?|oz|pounds?|lbs?|inch(?:es)?|quarts?|qt|gallons?|gal)\b`)
	stapleMentionRe  = regexp.MustCompile(`(?i)(?:,\s*)?(?:\b(?:and|with|of|some)\s+)?\b(?:a\s+pinch\s+of\s+)?(salt\s+and\s+pepper|salt|pepper|cooking\s+oil|olive\s+oil|oil|water|butter|flour|sugar|garlic|seasoning|spices)\b`)
	multiSpaceRe     = regexp.MustCompile(`\s{2,}`)
	danglingPunctRe  = regexp.MustCompile(`\s+([,.;])`)
	emptyClauseRe    = regexp.MustCompile(`,\s*([,.])`)
)

// convertImperialText rewrites imperial amounts inside free-form
// instruction text into metric, e.g. "add 2 cups of milk" becomes
// "add 480 ml of milk".
func convertImperialText(text string) string {
	return imperialAmountRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := imperialAmountRe.FindStringSubmatch(match)
		amount := parseAmount(parts[1])
		converted, unit := toMetric(amount, parts[2])
		if unit == "" {
			return match
		}
		return fmt.Sprintf("%s %s", formatAmount(converted), unit)
	})
}

// parseAmount parses "2", "1/2", and "1 1/2" style amounts.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		var whole float64
		frac := s
		if fields := strings.Fields(s); len(fields) == 2 {
			whole, _ = strconv.ParseFloat(fields[0], 64)
			frac = fields[1]
		}
		parts := strings.SplitN(frac, "/", 2)
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return whole
		}
		return whole + num/den
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// formatAmount renders a converted amount without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

// scrubInstruction removes staple mentions from an instruction, converts
// any imperial amounts left in the text, and tidies the leftover
// whitespace and punctuation.
func scrubInstruction(text string) string {
	s := convertImperialText(text)
	s = stapleMentionRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = danglingPunctRe.ReplaceAllString(s, "$1")
	s = emptyClauseRe.ReplaceAllString(s, "$1")
	s = strings.Trim(s, " ,")
	return s
}
