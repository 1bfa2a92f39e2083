// Package config provides configuration loading and management for
// micrograph-features. It handles loading configuration from YAML files,
// provides default values, and converts each section into the options
// struct its pipeline stage expects.
package config
