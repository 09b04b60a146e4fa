package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// Settings is the user-editable reminder configuration file; comments and
// trailing commas are allowed.
type Settings struct {
	Mode       string   `json:"mode,omitempty"`
	LeadHours  *int     `json:"leadHours,omitempty"`
	DailyTimes []string `json:"dailyTimes,omitempty"`
	Locale     string   `json:"locale,omitempty"`
}

// LoadSettings reads path and overlays it onto defaults. A missing file yields
// defaults unchanged.
func LoadSettings(path string, defaults Policy, defaultLocale string) (Policy, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, defaultLocale, defaults.Validate()
		}
		return Policy{}, "", fmt.Errorf("failed to read reminder settings %s: %w", path, err)
	}
	return ParseSettings(b, defaults, defaultLocale)
}

func ParseSettings(b []byte, defaults Policy, defaultLocale string) (Policy, string, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return Policy{}, "", fmt.Errorf("failed to parse reminder settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(std, &s); err != nil {
		return Policy{}, "", fmt.Errorf("failed to parse reminder settings: %w", err)
	}

	policy := defaults
	locale := defaultLocale

	if s.Mode != "" {
		policy.Mode = Mode(s.Mode)
	}
	if s.LeadHours != nil {
		if *s.LeadHours < 0 || *s.LeadHours > int(MaxLeadTime/time.Hour) {
			return Policy{}, "", fmt.Errorf("%w: leadHours %d outside 0..48", ErrInvalidPolicy, *s.LeadHours)
		}
		policy.LeadTime = time.Duration(*s.LeadHours) * time.Hour
	}
	if s.DailyTimes != nil {
		times := make([]ClockTime, 0, len(s.DailyTimes))
		for _, raw := range s.DailyTimes {
			c, err := ParseClockTime(raw)
			if err != nil {
				return Policy{}, "", err
			}
			times = append(times, c)
		}
		policy.DailyTimes = times
	}
	if s.Locale != "" {
		locale = s.Locale
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, "", err
	}
	return policy, locale, nil
}
