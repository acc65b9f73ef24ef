package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mealweek/internal/plan"
)

// Storage backends.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Settings are the planner options read from the YAML settings file.
type Settings struct {
	// Days is how many of the canonical week days are in scope, 1-7.
	Days int `yaml:"days"`
	// Meals is the active meal-slot set, in display order.
	Meals []string `yaml:"meals"`
}

// Config holds the configuration for the application.
type Config struct {
	DataDir        string
	StorageBackend string

	// Required only for the clip command.
	GeminiAPIKey string

	// Telegram config, required only for the bot binary.
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64

	Planner Settings
}

// NewFromEnv creates a Config from environment variables (a .env file is
// loaded first when present) and the YAML settings file in the data
// directory.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	dataDir := os.Getenv("MEALWEEK_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	backend := os.Getenv("MEALWEEK_STORAGE")
	if backend == "" {
		backend = BackendFiles
	}
	if backend != BackendFiles && backend != BackendSQLite {
		return nil, fmt.Errorf("MEALWEEK_STORAGE must be %q or %q, got %q", BackendFiles, BackendSQLite, backend)
	}

	var allowedIDs []int64
	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains invalid ID %q: %w", part, err)
			}
			allowedIDs = append(allowedIDs, id)
		}
	}

	settings, err := loadSettings(filepath.Join(dataDir, "settings.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:                dataDir,
		StorageBackend:         backend,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		Planner:                settings,
	}, nil
}

// loadSettings reads the YAML settings file. A missing file means
// defaults: the full week and the standard meal set.
func loadSettings(path string) (Settings, error) {
	settings := Settings{Days: len(plan.Days)}
	for _, m := range plan.DefaultMeals {
		settings.Meals = append(settings.Meals, string(m))
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if settings.Days < 1 || settings.Days > len(plan.Days) {
		return Settings{}, fmt.Errorf("settings: days must be between 1 and %d, got %d", len(plan.Days), settings.Days)
	}
	if len(settings.Meals) == 0 {
		return Settings{}, fmt.Errorf("settings: meals must not be empty")
	}
	return settings, nil
}

// CatalogPath is the CSV file backing the recipe catalog.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "recipes.csv")
}

// PlanPath is the JSON file backing the meal plan.
func (c *Config) PlanPath() string {
	return filepath.Join(c.DataDir, "plan.json")
}

// DatabasePath is the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mealweek.db")
}

// ActiveDays returns the in-scope days per the settings.
func (c *Config) ActiveDays() []plan.Day {
	return plan.FirstDays(c.Planner.Days)
}

// ActiveMeals returns the configured meal-slot set.
func (c *Config) ActiveMeals() []plan.Meal {
	meals := make([]plan.Meal, 0, len(c.Planner.Meals))
	for _, m := range c.Planner.Meals {
		meals = append(meals, plan.Meal(m))
	}
	return meals
}

// RequireTelegram validates the bot-specific configuration.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// RequireGemini validates the clipper-specific configuration.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}
