// Package config loads the echo server's runtime configuration from multiple
// sources (YAML file, environment variables, CLI flags) with precedence:
// CLI flags > YAML config > Environment variables > Defaults.
package config
