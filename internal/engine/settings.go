// internal/engine/settings.go
package engine

import (
	"fmt"
	"strings"

	"content-analyzer/internal/common/errors"
)

const (
	ModeSimulated = "simulated"
	ModeLive      = "live"
)

// Settings is the engine's replaceable configuration. Each analysis reads a
// copy taken when it starts.
type Settings struct {
	Mode     string `json:"mode"`
	Endpoint string `json:"endpoint,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

// SettingsUpdate changes only the fields that are set.
type SettingsUpdate struct {
	Mode     *string `json:"mode,omitempty"`
	Endpoint *string `json:"endpoint,omitempty"`
	APIKey   *string `json:"apiKey,omitempty"`
}

// LiveReady reports whether live mode has what it needs.
func (s Settings) LiveReady() bool {
	return s.Endpoint != "" && s.APIKey != ""
}

// Masked hides all but the last four characters of the API key.
func (s Settings) Masked() Settings {
	s.APIKey = MaskKey(s.APIKey)
	return s
}

func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

func (s Settings) validate() error {
	switch s.Mode {
	case ModeSimulated, ModeLive:
		return nil
	default:
		return errors.NewInvalidSettingsError(fmt.Sprintf("mode must be %q or %q, got %q", ModeSimulated, ModeLive, s.Mode))
	}
}

func (s Settings) apply(u SettingsUpdate) Settings {
	if u.Mode != nil {
		s.Mode = strings.ToLower(strings.TrimSpace(*u.Mode))
	}
	if u.Endpoint != nil {
		s.Endpoint = strings.TrimSpace(*u.Endpoint)
	}
	if u.APIKey != nil {
		s.APIKey = strings.TrimSpace(*u.APIKey)
	}
	return s
}
