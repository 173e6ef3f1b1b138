// embed.go
//
// Root-level embeds.  Migrations ship inside the binary so a deploy is
// one executable plus its config.

package vpapi

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
