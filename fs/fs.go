package appfs

import "embed"

// FS holds non-Go assets shipped with the binary: goose migrations and
// email templates.
//go:embed migrations all:assets
var FS embed.FS
