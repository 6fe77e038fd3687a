// Package config provides configuration for the provider clients, the scoring engine and the API server
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host        string
	Port        string
	FrontendURL string

	// API Keys
	GoPlusAPIKey    string
	CoinGeckoAPIKey string

	// Provider endpoints
	GoPlusBaseURL      string
	SecurityChainID    string
	CoinGeckoBaseURL   string
	CoinGeckoPlatform  string
	SuiRPCURL          string
	DexScreenerBaseURL string
	CetusBaseURL       string
	TurbosBaseURL      string
	BlueMoveBaseURL    string

	// Liquidity fallback order, first entry is tried first
	LiquidityProviders []string

	// Budgets
	AnalysisTimeout time.Duration
	CacheTTL        time.Duration

	// Provider protection
	ProviderRPS     float64
	BreakerFailures int
	BreakerCooldown time.Duration
	RateLimitPerMin int
	TrustProxy      bool // key the inbound limiter on X-Forwarded-For

	// Storage
	RedisURL    string
	DatabaseURL string

	// Logging
	LogLevel  string
	LogFormat string

	// Scoring weights, must sum to 1
	ContractWeight  float64
	LiquidityWeight float64
	HolderWeight    float64
	CommunityWeight float64
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "5000"),
		FrontendURL: getEnv("FRONTEND_URL", "https://suichaincheck.vercel.app"),

		GoPlusAPIKey:    os.Getenv("GOPLUS_API_KEY"),
		CoinGeckoAPIKey: os.Getenv("COINGECKO_API_KEY"),

		GoPlusBaseURL:      getEnv("GOPLUS_BASE_URL", "https://api.gopluslabs.io"),
		SecurityChainID:    getEnv("SECURITY_CHAIN_ID", "sui"),
		CoinGeckoBaseURL:   getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoPlatform:  getEnv("COINGECKO_PLATFORM", "sui"),
		SuiRPCURL:          getEnv("SUI_RPC_URL", "https://fullnode.mainnet.sui.io"),
		DexScreenerBaseURL: getEnv("DEXSCREENER_BASE_URL", "https://api.dexscreener.com/latest/dex/tokens"),
		CetusBaseURL:       getEnv("CETUS_BASE_URL", "https://api-sui.cetus.zone"),
		TurbosBaseURL:      getEnv("TURBOS_BASE_URL", "https://api.turbos.finance"),
		BlueMoveBaseURL:    getEnv("BLUEMOVE_BASE_URL", "https://api.bluemove.net"),

		LiquidityProviders: getEnvList("LIQUIDITY_PROVIDERS", []string{"dexscreener", "cetus", "turbos", "bluemove", "coingecko"}),

		AnalysisTimeout: getEnvDuration("ANALYSIS_TIMEOUT", 45*time.Second),
		CacheTTL:        getEnvDuration("CACHE_TTL", 60*time.Second),

		ProviderRPS:     getEnvFloat("PROVIDER_RPS", 5),
		BreakerFailures: getEnvInt("BREAKER_FAILURES", 5),
		BreakerCooldown: getEnvDuration("BREAKER_COOLDOWN", 30*time.Second),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
		TrustProxy:      getEnvBool("TRUST_PROXY", false),

		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		ContractWeight:  0.30,
		LiquidityWeight: 0.25,
		HolderWeight:    0.25,
		CommunityWeight: 0.20,
	}
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return time.Duration(i) * time.Second
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
