// Package config reads the search pipeline settings from the environment.
//
// [Load] returns a fully populated [Settings] value with sane defaults for
// every unset variable; only the search engine credentials have no default.
// Commands typically pair it with godotenv so a local .env file is honoured.
package config
