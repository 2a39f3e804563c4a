package worker

import (
	"os"
	"strconv"
	"strings"

	"github.com/snow-ghost/knapsack/core"
)

// Config holds configuration for a single run
type Config struct {
	ProblemPath string
	Params      core.Params
	LogLevel    string
	LogFormat   string
}

// LoadConfig loads configuration from environment variables. Unset variables
// keep the values of core.DefaultParams.
func LoadConfig() *Config {
	d := core.DefaultParams()
	config := &Config{
		ProblemPath: getEnv("KNAPSACK_PROBLEM", "data/instancia.csv"),
		Params: core.Params{
			PopulationSize:  getEnvInt("KNAPSACK_POPULATION_SIZE", d.PopulationSize),
			CrossoverRate:   getEnvFloat("KNAPSACK_CROSSOVER_RATE", d.CrossoverRate),
			MutationRate:    getEnvFloat("KNAPSACK_MUTATION_RATE", d.MutationRate),
			NumGenerations:  getEnvInt("KNAPSACK_GENERATIONS", d.NumGenerations),
			Selection:       core.SelectionMethod(getEnv("KNAPSACK_SELECTION", string(d.Selection))),
			TournamentSize:  getEnvInt("KNAPSACK_TOURNAMENT_SIZE", d.TournamentSize),
			Elitism:         getEnvBool("KNAPSACK_ELITISM", d.Elitism),
			Metric:          core.Metric(getEnv("KNAPSACK_METRIC", string(d.Metric))),
			Crossover:       core.CrossoverMethod(getEnv("KNAPSACK_CROSSOVER", string(d.Crossover))),
			Penalty:         core.PenaltyPolicy(getEnv("KNAPSACK_PENALTY", string(d.Penalty))),
			StrictSelection: getEnvBool("KNAPSACK_STRICT_SELECTION", false),
			CacheSize:       getEnvInt("KNAPSACK_CACHE_SIZE", 0),
			Seed:            getEnvUint("KNAPSACK_SEED", 0),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultValue
}
