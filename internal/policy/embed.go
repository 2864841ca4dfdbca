package policy

import (
	"embed"
)

// CasbinFS embeds the Casbin model and the allowed role bindings into the binary.
//
//go:embed casbin/model.conf casbin/policy.csv
var CasbinFS embed.FS
