package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every recognized setting. It is loaded once in main and
// passed explicitly into constructors so concurrent runs can carry
// distinct configurations.
type Config struct {
	// Rubric oracle gateway (OpenAI-style chat completions endpoint).
	LLMGatewayURL  string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	UseMockLLM     bool

	// Root directory for per-call artifact trees.
	ArtifactsDir string

	// Upper bound on the oracle call, the only stage with unbounded
	// external latency. A timeout degrades the rubric, never the run.
	MaxRuntime time.Duration

	Port string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honored.
func Load() Config {
	return Config{
		LLMGatewayURL:  os.Getenv("LLM_GATEWAY_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       envOr("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature: floatOr("LLM_TEMPERATURE", 0.1),
		UseMockLLM:     os.Getenv("USE_MOCK_LLM") == "true",
		ArtifactsDir:   envOr("ARTIFACTS_DIR", "artifacts"),
		MaxRuntime:     time.Duration(intOr("PIPELINE_MAX_RUNTIME_SEC", 600)) * time.Second,
		Port:           envOr("PORT", "8080"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatOr(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func intOr(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
