// Package content embeds the default weapons, items, enemy templates and
// tactics scripts. Directories configured under content.* replace the
// matching embedded directory.
package content

import "embed"

// Directory names within FS.
const (
	WeaponsDir = "weapons"
	ItemsDir   = "items"
	EnemiesDir = "enemies"
	ScriptsDir = "scripts"
	// GlobalScriptsDir holds hooks shared by every enemy type. Other
	// directories under ScriptsDir are named after an enemy type.
	GlobalScriptsDir = "global"
)

//go:embed weapons/*.yaml items/*.yaml enemies/*.yaml scripts
var FS embed.FS
