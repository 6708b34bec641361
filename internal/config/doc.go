// Package config loads and validates application configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config.yaml, an optional .env file and DEEPTATTOO_-prefixed environment
// variables. The resulting Config is read once at startup and each section is
// passed to the constructor of the component that needs it; nothing reads the
// environment at call time.
package config
