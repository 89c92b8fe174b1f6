package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	previewLength = 50
	dateLayout    = "2006-01-02"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// preview returns the first 50 characters of text, adding "..." only when something was cut.
func preview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + "..."
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func stringPtr(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
