package util

import (
	"os"
	"strconv"
	"strings"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetEnvironmentString returns the value of key or fallback when unset or empty
func GetEnvironmentString(env map[string]string, key string, fallback string) string {
	if env[key] != "" {
		return env[key]
	}

	return fallback
}

func GetEnvironmentInt(env map[string]string, key string, fallback int) (int, error) {
	if env[key] == "" {
		return fallback, nil
	}

	return strconv.Atoi(env[key])
}

func GetEnvironmentBool(env map[string]string, key string, fallback bool) bool {
	switch strings.ToUpper(env[key]) {
	case "YES", "TRUE", "1":
		return true
	case "NO", "FALSE", "0":
		return false
	default:
		return fallback
	}
}
