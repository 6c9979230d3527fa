package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models swat.yml.
type Config struct {
	Campaign struct {
		SaveKey string `yaml:"save_key"`
	} `yaml:"campaign"`
	LLM    LLM    `yaml:"llm"`
	Rules  Rules  `yaml:"rules"`
	Server Server `yaml:"server"`
}

type LLM struct {
	Provider          string  `yaml:"provider"`
	URL               string  `yaml:"url"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// Timeout returns the bounded wait for one generation call.
func (l LLM) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// Rules holds the campaign economy and pacing constants.
type Rules struct {
	StartingBudget       int     `yaml:"starting_budget"`
	StartingReputation   int     `yaml:"starting_reputation"`
	RecruitmentCost      int     `yaml:"recruitment_cost"`
	CityFunding          int     `yaml:"city_funding"`
	MaxMissionsPerDay    int     `yaml:"max_missions_per_day"`
	DeclinePenalty       int     `yaml:"decline_penalty"`
	FailurePenalty       int     `yaml:"failure_penalty"`
	ReleasePenalty       int     `yaml:"release_penalty"`
	ChargeCost           int     `yaml:"charge_cost"`
	ChargeReputation     int     `yaml:"charge_reputation"`
	CIStipend            int     `yaml:"ci_stipend"`
	SuspectCaptureChance float64 `yaml:"suspect_capture_chance"`
	RandomEventChance    float64 `yaml:"random_event_chance"`
	DayTransitionDelayMS int     `yaml:"day_transition_delay_ms"`
}

// DayTransitionDelay is the pause held between flagging and applying a day advance.
func (r Rules) DayTransitionDelay() time.Duration {
	return time.Duration(r.DayTransitionDelayMS) * time.Millisecond
}

type Server struct {
	Addr          string `yaml:"addr"`
	BasePath      string `yaml:"base_path"`
	JWTSecret     string `yaml:"jwt_secret"`
	ShiftSchedule string `yaml:"shift_schedule"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with swat config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Campaign.SaveKey == "" {
		return fmt.Errorf("config.campaign.save_key is required")
	}
	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("config.llm.provider must be 'openai' or 'ollama'")
	}
	if c.LLM.URL == "" {
		return fmt.Errorf("config.llm.url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config.llm.model is required")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("config.llm.timeout_seconds must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config.llm.temperature must be within [0,2]")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config.llm.max_tokens must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("config.llm.requests_per_minute cannot be negative")
	}
	r := c.Rules
	if r.StartingReputation < 0 || r.StartingReputation > 100 {
		return fmt.Errorf("config.rules.starting_reputation must be within [0,100]")
	}
	if r.MaxMissionsPerDay <= 0 {
		return fmt.Errorf("config.rules.max_missions_per_day must be positive")
	}
	for name, v := range map[string]int{
		"recruitment_cost":        r.RecruitmentCost,
		"city_funding":            r.CityFunding,
		"decline_penalty":         r.DeclinePenalty,
		"failure_penalty":         r.FailurePenalty,
		"release_penalty":         r.ReleasePenalty,
		"charge_cost":             r.ChargeCost,
		"charge_reputation":       r.ChargeReputation,
		"ci_stipend":              r.CIStipend,
		"day_transition_delay_ms": r.DayTransitionDelayMS,
	} {
		if v < 0 {
			return fmt.Errorf("config.rules.%s cannot be negative", name)
		}
	}
	for name, v := range map[string]float64{
		"suspect_capture_chance": r.SuspectCaptureChance,
		"random_event_chance":    r.RandomEventChance,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config.rules.%s must be within [0,1]", name)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "swat.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(saveKey string) string {
	return fmt.Sprintf(defaultTemplate, saveKey)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(GenerateDefault(DefaultSaveKey))).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const DefaultSaveKey = "swat-commander-save"

const defaultTemplate = `campaign:
  save_key: %s

llm:
  provider: openai
  url: http://localhost:8888/v1/chat/completions
  model: llama3.1
  api_key: ""
  timeout_seconds: 60
  temperature: 0.8
  max_tokens: 2048
  requests_per_minute: 30

rules:
  starting_budget: 100000
  starting_reputation: 50
  recruitment_cost: 5000
  city_funding: 10000
  max_missions_per_day: 5
  decline_penalty: 5
  failure_penalty: 10
  release_penalty: 2
  charge_cost: 1000
  charge_reputation: 5
  ci_stipend: 2000
  suspect_capture_chance: 0.6
  random_event_chance: 0.3
  day_transition_delay_ms: 0

server:
  addr: 127.0.0.1:8080
  base_path: /v0
  jwt_secret: ""
  shift_schedule: ""
`
