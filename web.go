// Package mapty holds the web page served by the mapty binary.
package mapty

import "embed"

// WebFS is the embedded web page.
//
//go:embed web
var WebFS embed.FS
