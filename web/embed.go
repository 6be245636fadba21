// Package web bundles the server-rendered templates.
package web

import "embed"

//go:embed templates/*.tmpl
var Templates embed.FS
