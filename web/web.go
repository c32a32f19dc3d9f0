// Package web carries the HTML pages for the signup, login and index views.
package web

import "embed"

// Templates holds the page templates, embedded so the binary is
// self-contained.
//
//go:embed templates/*.html
var Templates embed.FS
