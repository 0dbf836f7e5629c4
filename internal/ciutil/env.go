package ciutil

import (
	"log/slog"
	"os"

	"github.com/Zapzatron/ToDo-List-API/internal/redact"
)

// Environment variable names used across the codebase.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Database connection environment variables
	EnvDatabaseURL    = "DATABASE_URL"
	EnvTestDBURL      = "TODO_TEST_DB_URL"
	EnvAppDatabaseURL = "TODO_DATABASE_URL"
)

// TestDatabaseURLVars lists the variables checked for a test database, in
// order of preference.
var TestDatabaseURLVars = []string{EnvDatabaseURL, EnvTestDBURL, EnvAppDatabaseURL}

// IsCI returns true if the current environment is a CI environment.
// It checks for common CI environment variables across different CI providers.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
// Using any but the first name is logged, with the value redacted.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Debug("using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}

// GetTestDatabaseURL returns the first configured test database URL, or "".
func GetTestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks(TestDatabaseURLVars, "", logger)
}
