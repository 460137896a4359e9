// Package config loads and validates the pipeline configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (AURELION_ prefix). The package also centralizes the
// project directory layout through the Paths type so every other
// package resolves file locations the same way.
package config
