package search

import (
	"strings"

	"github.com/brillante-joyas/catalog-api/internal/modules/textnorm"
)

type brandAlias struct {
	alias string
	key   string
}

// brandAliases is a fixed priority list: the first alias that matches wins,
// so multi-word aliases sit above the single words they contain.
var brandAliases = []brandAlias{
	{"ray ban", "ray-ban"},
	{"rayban", "ray-ban"},
	{"carolina herrera", "carolina-herrera"},
	{"michael kors", "michael-kors"},
	{"tommy hilfiger", "tommy-hilfiger"},
	{"tous", "tous"},
	{"pandora", "pandora"},
	{"swarovski", "swarovski"},
	{"viceroy", "viceroy"},
	{"festina", "festina"},
	{"lotus", "lotus"},
	{"casio", "casio"},
	{"guess", "guess"},
	{"hawkers", "hawkers"},
	{"polaroid", "polaroid"},
}

// MatchBrand resolves a free-text query to a canonical brand key, or "" when
// the query names no known brand. An alias matches on equality or on being
// contained inside a longer query ("gafas ray ban" -> "ray-ban").
func MatchBrand(query string) string {
	q := textnorm.Normalize(query)
	if q == "" {
		return ""
	}
	for _, ba := range brandAliases {
		if q == ba.alias || strings.Contains(q, ba.alias) {
			return ba.key
		}
	}
	return ""
}
