// Package configs provides the embedded configuration template for seoulmate.
//
// The template is embedded at build time with go:embed so it ships with every
// distribution, source builds included. `seoulmate config init` writes it to
// disk as a starting point; internal/config.Load layers the file over the
// built-in defaults.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// `seoulmate config init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
