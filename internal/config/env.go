package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	AIAPIKey   string
	EmbedModel string
	EmbedDim   int
	GenModel   string

	WhatsAppProvider  string // "maytapi" or "evolution"
	WhatsAppAPIURL    string
	WhatsAppAPIKey    string
	MaytapiProductID  string
	MaytapiPhoneID    string
	EvolutionInstance string

	SeedDemoData bool
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:   getEnvInt("EMBED_DIM", 768),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		WhatsAppProvider:  getEnv("WHATSAPP_PROVIDER", ""),
		WhatsAppAPIURL:    getEnv("WHATSAPP_API_URL", ""),
		WhatsAppAPIKey:    getEnv("WHATSAPP_API_KEY", ""),
		MaytapiProductID:  getEnv("MAYTAPI_PRODUCT_ID", ""),
		MaytapiPhoneID:    getEnv("MAYTAPI_PHONE_ID", ""),
		EvolutionInstance: getEnv("EVOLUTION_INSTANCE_NAME", "default"),

		SeedDemoData: getEnvBool("SEED_DEMO_DATA", false),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}
