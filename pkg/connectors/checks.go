package connectors

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/iddaa-lens/laundry/pkg/models"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// RequireNonBlank rejects empty answers
func RequireNonBlank(_ context.Context, _ *models.Job, _ any, answer string) (any, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrInvalidAnswer
	}
	return nil, nil
}

// RequireURL accepts absolute http(s) URLs only
func RequireURL(_ context.Context, _ *models.Job, _ any, answer string) (any, error) {
	if !isHTTPURL(answer) {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidAnswer, answer)
	}
	return nil, nil
}

// OptionalURL accepts a blank answer or an absolute http(s) URL
func OptionalURL(ctx context.Context, job *models.Job, old any, answer string) (any, error) {
	if strings.TrimSpace(answer) == "" {
		return "", nil
	}
	return RequireURL(ctx, job, old, answer)
}

// RequireIdentifier accepts SQL-safe identifiers
func RequireIdentifier(_ context.Context, _ *models.Job, _ any, answer string) (any, error) {
	if !identifierPattern.MatchString(answer) {
		return nil, fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidAnswer, answer)
	}
	return strings.ToLower(answer), nil
}

// YesNo converts y/yes/true and n/no/false answers into booleans
func YesNo(_ context.Context, _ *models.Job, _ any, answer string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	case "n", "no", "":
		return false, nil
	}
	if b, err := strconv.ParseBool(answer); err == nil {
		return b, nil
	}
	return nil, ErrInvalidAnswer
}

// WhenSet returns a PreCheck that only asks for a field once another setting has a value
func WhenSet(setting string) PreCheck {
	return func(_ context.Context, _ *models.Job, instance *models.ConnectorInstance, prompt string) (Entry, error) {
		if instance == nil || !instance.Settings.Has(setting) {
			return Entry{Required: false}, nil
		}
		return Entry{Required: true, Prompt: prompt}, nil
	}
}

// SuggestDefault returns a PreCheck suggesting value while setting is still unset
func SuggestDefault(setting, value string) PreCheck {
	return func(_ context.Context, _ *models.Job, instance *models.ConnectorInstance, prompt string) (Entry, error) {
		entry := Entry{Required: true, Prompt: prompt}
		if instance == nil || !instance.Settings.Has(setting) {
			entry.Suggest = value
		}
		return entry, nil
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
