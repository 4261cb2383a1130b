package appfs

import "embed"

// FS embeds the static assets the app needs at runtime: goose SQL
// migrations and the email templates. The all: prefix keeps the
// underscore-prefixed base templates in.
//
//go:embed migrations all:templates
var FS embed.FS
