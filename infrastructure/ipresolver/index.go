package ipresolver

import (
	"mruput.io/infrastructure/ipresolver/maxmind"
	"mruput.io/infrastructure/ipresolver/types"
)

var IPResolverInstance types.IPResolver = &maxmind.MaxMindIPResolver{}
