package redis

import (
	"strings"
)

var (
	App     = "zapshop" // project code
	Env     = "dev"     // dev|stg|prod
	Version = "v1"      // schema version for easy bust
)

func join(parts ...string) string {
	return strings.Join(parts, ":")
}

func pfx() string {
	return join(App, Env, Version)
}

func NormalizeAddress(addr string) string { return strings.ToLower(addr) }

// ViewKey is the cache key of a view function result: prefix, contract,
// function, then the arguments in call order.
func ViewKey(contract, function string, args ...string) string {
	parts := []string{pfx(), "view", NormalizeAddress(contract), function}
	parts = append(parts, args...)
	return join(parts...)
}
