// Package templates embeds the files hilite writes for users.
package templates

import (
	_ "embed"
)

//go:embed config.yaml
var defaultConfig string

// DefaultConfig returns the commented default config file written by 'hilite init'.
func DefaultConfig() string {
	return defaultConfig
}
