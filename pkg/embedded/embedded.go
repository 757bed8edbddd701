package embedded

import (
	_ "embed"
)

// Embed default gateway data files
//
//go:embed data/registry.yaml
var RegistryYAML []byte

//go:embed data/prebaked.json
var PrebakedJSON []byte

//go:embed data/examples/moderate_v00.json
var ModerateExamplesV00JSON []byte

//go:embed data/examples/route_v00.json
var RouteExamplesV00JSON []byte
