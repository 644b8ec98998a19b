package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// Tournament holds the calendar parameters for schedule generation.
type Tournament struct {
	Name      string `yaml:"name"`
	StartDate Date   `yaml:"start_date"`
	Venue     string `yaml:"venue"`
	Kickoff   string `yaml:"kickoff"`   // "20:00" when omitted
	RestDays  *int   `yaml:"rest_days"` // days between group and knockout phase, 1 when omitted
}

// Draw holds the balancing weights and threshold. The defaults reproduce
// the historical heuristic: skill-weighted score with squad size as a
// secondary factor, and groups considered balanced below one standard
// deviation of average level.
type Draw struct {
	AvgLevelWeight  float64 `yaml:"avg_level_weight"`
	SquadSizeWeight float64 `yaml:"squad_size_weight"`
	BalancedStdDev  float64 `yaml:"balanced_std_dev"`
}

// Advisor holds the default constraints fed to format suggestion.
type Advisor struct {
	MaxDuration       int  `yaml:"max_duration"`
	AvailableFields   int  `yaml:"available_fields"`
	MaxMatchesPerDay  int  `yaml:"max_matches_per_day"`
	IncludeThirdPlace bool `yaml:"include_third_place"`
}

// Storage points at the sqlite snapshot database.
type Storage struct {
	Path string `yaml:"path"`
}

type Config struct {
	Tournament Tournament `yaml:"tournament"`
	Draw       Draw       `yaml:"draw"`
	Advisor    Advisor    `yaml:"advisor"`
	Storage    Storage    `yaml:"storage"`
}

// RestDaysOrDefault returns the configured rest gap, defaulting to one day.
func (t *Tournament) RestDaysOrDefault() int {
	if t.RestDays == nil {
		return 1
	}
	return *t.RestDays
}

// LoadFromBytes parses YAML bytes into a Config, applies defaults and
// validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Tournament.Kickoff == "" {
		c.Tournament.Kickoff = "20:00"
	}
	if c.Draw.AvgLevelWeight == 0 && c.Draw.SquadSizeWeight == 0 {
		c.Draw.AvgLevelWeight = 0.7
		c.Draw.SquadSizeWeight = 0.3
	}
	if c.Draw.BalancedStdDev == 0 {
		c.Draw.BalancedStdDev = 1.0
	}
	if c.Advisor.MaxDuration == 0 {
		c.Advisor.MaxDuration = 7
	}
	if c.Advisor.MaxMatchesPerDay == 0 {
		c.Advisor.MaxMatchesPerDay = 4
	}
	if c.Advisor.AvailableFields == 0 {
		c.Advisor.AvailableFields = 1
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "ligue.db"
	}
}

func (c *Config) validate() error {
	if c.Tournament.StartDate.Time.IsZero() {
		return fmt.Errorf("tournament start_date is required")
	}

	if _, err := time.Parse("15:04", c.Tournament.Kickoff); err != nil {
		return fmt.Errorf("invalid kickoff time %q: %w", c.Tournament.Kickoff, err)
	}

	if c.Tournament.RestDays != nil && *c.Tournament.RestDays < 0 {
		return fmt.Errorf("rest_days cannot be negative")
	}

	if c.Draw.AvgLevelWeight < 0 || c.Draw.SquadSizeWeight < 0 {
		return fmt.Errorf("draw weights cannot be negative")
	}
	if c.Draw.AvgLevelWeight+c.Draw.SquadSizeWeight == 0 {
		return fmt.Errorf("at least one draw weight must be positive")
	}
	if c.Draw.BalancedStdDev < 0 {
		return fmt.Errorf("balanced_std_dev cannot be negative")
	}

	if c.Advisor.MaxMatchesPerDay < 1 {
		return fmt.Errorf("max_matches_per_day must be at least 1")
	}

	return nil
}
