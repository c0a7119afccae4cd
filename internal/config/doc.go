// Package config loads, validates, and normalizes TubeWise configuration.
//
// Configuration comes from a TOML file (~/.config/tubewise/config.toml or
// ./tubewise.toml), with secrets overlaid from the environment and an
// optional ~/.tubewise/.env file. Path fields are expanded and absolute
// after Load returns.
package config
