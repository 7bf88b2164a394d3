package search

import (
	"strings"

	"github.com/brillante-joyas/catalog-api/internal/modules/textnorm"
)

// synonymGroups are bidirectional: every member of a group expands to every
// other member. Keyed per member at init time.
var synonymGroups = [][]string{
	{"anillo", "sortija", "aro", "alianza"},
	{"pulsera", "brazalete", "esclava"},
	{"collar", "gargantilla", "cadena"},
	{"pendiente", "arete", "zarcillo"},
	{"colgante", "medalla", "dije"},
	{"gemelos", "mancuernillas"},
	{"gafas", "lentes", "anteojos"},
	{"reloj", "cronografo"},
	{"joya", "joyeria", "alhaja"},
	{"bolso", "cartera", "bandolera"},
}

var synonyms = buildSynonymTable()

func buildSynonymTable() map[string][]string {
	table := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, member := range group {
			for _, other := range group {
				if other != member {
					table[member] = append(table[member], other)
				}
			}
		}
	}
	return table
}

// Expand turns a free-text query into the flat set of normalized terms used
// for substring matching: each token plus its synonyms, a naive
// plural/singular companion, an h-prefix toggle and ll<->y spelling variants.
// Order is irrelevant, only membership matters downstream.
func Expand(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, token := range strings.Fields(textnorm.Normalize(query)) {
		addTerm(terms, token)

		companion := pluralCompanion(token)
		if companion != "" {
			addTerm(terms, companion)
		}

		if len(token) > 3 {
			if strings.HasPrefix(token, "h") {
				terms[token[1:]] = struct{}{}
			} else {
				terms["h"+token] = struct{}{}
			}
		}

		if strings.Contains(token, "ll") {
			terms[strings.ReplaceAll(token, "ll", "y")] = struct{}{}
		}
		if strings.Contains(token, "y") {
			terms[strings.ReplaceAll(token, "y", "ll")] = struct{}{}
		}
	}
	return terms
}

// addTerm adds the term plus its synonym group, if it belongs to one.
func addTerm(terms map[string]struct{}, term string) {
	terms[term] = struct{}{}
	for _, syn := range synonyms[term] {
		terms[syn] = struct{}{}
	}
}

// pluralCompanion returns the naive singular of a plural token, or the naive
// plural of a singular one. "" when the token is too short to inflect.
func pluralCompanion(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") {
		return token[:len(token)-1]
	}
	if len(token) > 2 {
		return token + "s"
	}
	return ""
}
