package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/s3"
	"github.com/mealcraft/mealcraft-api/internal/util"
	"go.uber.org/zap"
)

// DetectionService identifies ingredients in uploaded photos.
type DetectionService struct {
	Cfg    *config.Config
	Vision ai.VisionProvider
}

// NewDetectionService creates a new DetectionService.
func NewDetectionService(cfg *config.Config, vision ai.VisionProvider) *DetectionService {
	return &DetectionService{
		Cfg:    cfg,
		Vision: vision,
	}
}

// nonFoodMarkers disqualify individual detected entries; a vehicle marker
// in the raw response disqualifies the whole image.
var nonFoodMarkers = []string{"car", "vehicle", "person", "background"}

// DetectFromImage validates the payload, asks the vision model for an
// ingredient list, and filters the result. Non-image payloads are rejected
// before any network call. When an S3 bucket is configured the photo is
// archived best effort.
func (s *DetectionService) DetectFromImage(ctx context.Context, userID uint, filename, contentType string, data []byte) ([]string, error) {
	if !strings.HasPrefix(contentType, "image/") || !ai.IsImageData(data) {
		return nil, ErrNotAnImage
	}

	raw, err := s.Vision.DetectIngredients(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("detect ingredients: %w", err)
	}

	if strings.Contains(strings.ToLower(raw), "vehicle") {
		return nil, ErrNonFoodImage
	}

	names, err := parseDetectionResponse(raw)
	if err != nil {
		return nil, err
	}

	filtered := filterDetectedNames(names)
	if len(filtered) == 0 {
		return nil, ErrNoIngredientsDetected
	}

	s.archivePhoto(userID, filename, data)

	return filtered, nil
}

// parseDetectionResponse parses model output into a name list: direct JSON
// array, then the outermost [...] block, then one entry per line.
func parseDetectionResponse(raw string) ([]string, error) {
	stripped := util.StripCodeFences(raw)

	var names []string
	if err := json.Unmarshal([]byte(stripped), &names); err == nil {
		return names, nil
	}

	if block := util.ExtractJSONArray(stripped); block != "" {
		if err := json.Unmarshal([]byte(block), &names); err == nil {
			return names, nil
		}
	}

	// Last resort: treat each line as an ingredient, stripping list markers.
	for _, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. \t")
		line = strings.Trim(line, `"',`)
		if line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no ingredient list in response", ErrMalformedResponse)
	}
	return names, nil
}

// filterDetectedNames lowercases, dedupes, and drops non-food entries.
func filterDetectedNames(names []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		if containsAny(n, nonFoodMarkers) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// archivePhoto uploads the photo to S3 in the background when a bucket is
// configured. Failures are logged, never surfaced.
func (s *DetectionService) archivePhoto(userID uint, filename string, data []byte) {
	if s.Cfg == nil || s.Cfg.EnvVars.S3Bucket == "" {
		return
	}
	key := s3.GenerateDetectionKey(userID, filename)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s3.UploadDetectionPhoto(ctx, s.Cfg, data, key); err != nil {
			logger.Get().Warn("failed to archive detection photo",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}()
}
