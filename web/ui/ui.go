// Package ui embeds the browser page served at the API root.
package ui

import _ "embed"

// IndexHTML is the single-page enrollment and verification UI.
//
//go:embed index.html
var IndexHTML []byte
