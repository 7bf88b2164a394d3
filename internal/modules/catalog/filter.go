package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/brillante-joyas/catalog-api/internal/modules/search"
	"github.com/brillante-joyas/catalog-api/internal/modules/textnorm"
)

// Filter keys consumed by the dedicated price and discount stages; everything
// else in the request is dispatched through the attribute-filter registry.
const (
	keyPrecio          = "precio"
	keyPrecioMin       = "precioMin"
	keyPrecioMax       = "precioMax"
	keyDescuentoMinimo = "descuentoMinimo"
)

// categoryRank is the fixed sort priority applied after filtering.
var categoryRank = []struct {
	keyword string
	rank    int
}{
	{"reloj", 1},
	{"gafas", 2},
	{"bolso", 3},
	{"anillo", 4},
	{"sortija", 4},
	{"pendiente", 5},
	{"collar", 6},
	{"pulsera", 7},
	{"gemelos", 8},
	{"joya", 9},
}

const unknownRank = 999

// categoryPhraseSeeds are the top-level category names whose presence in a
// query switches the text-search stage into category-phrase mode.
var categoryPhraseSeeds = []string{
	"joya", "anillo", "pulsera", "collar", "pendiente", "reloj", "gafas", "bolso",
}

// materialKeywords switch the text-search stage into material-phrase mode.
var materialKeywords = []string{
	"oro", "plata", "diamante", "perla", "platino", "circonita",
	"esmeralda", "rubi", "zafiro", "acero", "cuero", "titanio",
}

var categoryPhraseTerms = buildCategoryPhraseTerms()

func buildCategoryPhraseTerms() map[string]struct{} {
	terms := make(map[string]struct{})
	for _, seed := range categoryPhraseSeeds {
		for term := range search.Expand(seed) {
			terms[term] = struct{}{}
		}
	}
	return terms
}

// CalculateDiscount returns the discount percentage between a previous and a
// current price, rounded to the nearest multiple of 10 with the remainder
// threshold at 8 (28% -> 30, 23% -> 20). 0 when there is no real discount.
func CalculateDiscount(anterior, actual float64) int {
	if anterior <= 0 || actual < 0 || anterior <= actual {
		return 0
	}
	raw := (anterior - actual) / anterior * 100
	base := int(math.Floor(raw/10)) * 10
	if raw-float64(base) >= 8 {
		return base + 10
	}
	return base
}

// Pipeline applies a FilterRequest to a normalized catalog and sorts the
// survivors. Pure over its inputs.
type Pipeline struct {
	collator *collate.Collator
}

func NewPipeline() *Pipeline {
	return &Pipeline{collator: collate.New(language.Spanish)}
}

func (pl *Pipeline) Apply(products []Product, req FilterRequest) []Product {
	q := newSearchQuery(req.Busqueda)

	// A query that is the exact SKU of some product switches the search to
	// SKU-only mode: a customer pasting a reference wants that product, not
	// every title the reference happens to appear in.
	skuOnly := false
	if q != nil {
		for _, p := range products {
			if q.matchesSKU(p) {
				skuOnly = true
				break
			}
		}
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchesCategories(p, req.Categoria) {
			continue
		}
		if q != nil && !q.accepts(p, skuOnly) {
			continue
		}
		if !matchesPriceRange(p, req.Filtros) {
			continue
		}
		if !matchesMinimumDiscount(p, req.Filtros) {
			continue
		}
		if !matchesAttributes(p, req.Filtros) {
			continue
		}
		out = append(out, p)
	}

	pl.sortProducts(out)
	return out
}

// ── Stage 1: category filter ────────────────────────────────────

func matchesCategories(p Product, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, want := range requested {
		normWant := textnorm.Normalize(want)
		if normWant == "" {
			continue
		}
		if containsEitherWay(textnorm.Normalize(p.Category), normWant) {
			return true
		}
		// Asking for "joyeria" admits every jewelry subcategory.
		if strings.Contains(normWant, "joyeria") && jewelrySubcategories[textnorm.Normalize(p.Category)] {
			return true
		}
		for _, c := range p.CategoriesRaw {
			if containsEitherWay(textnorm.Normalize(c), normWant) {
				return true
			}
		}
		for _, tag := range p.TagsRaw {
			if containsEitherWay(textnorm.Normalize(tag), normWant) {
				return true
			}
		}
	}
	return false
}

func containsEitherWay(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ── Stage 2: text search ────────────────────────────────────────

// searchQuery precomputes everything the ordered text-search rules need.
// Rules run in a fixed priority cascade with early exit: sku-exact,
// title-full, brand, category-phrase, material-phrase, general fallback.
type searchQuery struct {
	raw    string
	norm   string
	tokens []string
	terms  map[string]struct{}
	brand  string
	hasCat bool
	hasMat bool
}

func newSearchQuery(busqueda string) *searchQuery {
	if strings.TrimSpace(busqueda) == "" {
		return nil
	}
	q := &searchQuery{
		raw:   strings.TrimSpace(busqueda),
		norm:  textnorm.Normalize(busqueda),
		terms: search.Expand(busqueda),
		brand: search.MatchBrand(busqueda),
	}
	q.tokens = strings.Fields(q.norm)
	for term := range q.terms {
		if _, ok := categoryPhraseTerms[term]; ok {
			q.hasCat = true
		}
	}
	for _, token := range q.tokens {
		for _, kw := range materialKeywords {
			if token == kw || token == kw+"s" {
				q.hasMat = true
			}
		}
	}
	return q
}

func (q *searchQuery) accepts(p Product, skuOnly bool) bool {
	if skuOnly {
		return q.matchesSKU(p)
	}
	return q.matches(p)
}

func (q *searchQuery) matches(p Product) bool {
	// Rule 1: every query token appears in the title.
	if q.matchesFullTitle(p) {
		return true
	}
	// Rule 2: a detected brand replaces all remaining rules.
	if q.brand != "" {
		return q.matchesBrand(p)
	}
	// Rule 3: category phrase, unless the query is also a material phrase.
	if q.hasCat && !q.hasMat {
		return q.anyTermIn(categoryHaystack(p))
	}
	// Rule 4: material phrase requires jewelry membership.
	if q.hasMat {
		return isJewelry(p) && q.anyTermIn(materialHaystack(p))
	}
	// Rule 5: general fallback over every searchable field.
	return q.anyTermIn(generalHaystack(p))
}

func (q *searchQuery) matchesSKU(p Product) bool {
	for _, v := range p.Variants {
		if v.SKU != "" && strings.EqualFold(q.raw, v.SKU) {
			return true
		}
	}
	return false
}

func (q *searchQuery) matchesFullTitle(p Product) bool {
	if len(q.tokens) == 0 {
		return false
	}
	title := textnorm.Normalize(p.Title)
	for _, token := range q.tokens {
		if !strings.Contains(title, token) {
			return false
		}
	}
	return true
}

func (q *searchQuery) matchesBrand(p Product) bool {
	if strings.Contains(textnorm.Normalize(p.Brand), q.brand) {
		return true
	}
	return strings.Contains(normalizedJoin(p.TagsRaw), q.brand)
}

func (q *searchQuery) anyTermIn(haystack string) bool {
	for term := range q.terms {
		if term != "" && strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func categoryHaystack(p Product) string {
	parts := []string{p.Category, p.JewelryType}
	parts = append(parts, p.CategoriesRaw...)
	parts = append(parts, p.TagsRaw...)
	return normalizedJoin(parts)
}

func materialHaystack(p Product) string {
	parts := []string{p.Material, p.Title}
	parts = append(parts, p.TagsRaw...)
	return normalizedJoin(parts)
}

func generalHaystack(p Product) string {
	parts := []string{
		p.Title, p.Slug, p.Brand, p.Material, p.JewelryType,
		p.Gender, p.Style, p.Color, p.Collection,
	}
	parts = append(parts, p.CategoriesRaw...)
	parts = append(parts, p.TagsRaw...)
	return normalizedJoin(parts)
}

func normalizedJoin(parts []string) string {
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		normalized = append(normalized, textnorm.Normalize(part))
	}
	return strings.Join(normalized, " ")
}

func isJewelry(p Product) bool {
	if jewelrySubcategories[textnorm.Normalize(p.Category)] {
		return true
	}
	for _, kw := range jewelryTypeKeywords {
		if strings.Contains(textnorm.Normalize(p.JewelryType), kw) {
			return true
		}
	}
	haystack := categoryHaystack(p)
	return strings.Contains(haystack, "joya") || strings.Contains(haystack, "joyeria")
}

// ── Stage 3: price range ────────────────────────────────────────

func matchesPriceRange(p Product, filtros map[string]FilterValue) bool {
	min, max := priceBounds(filtros)
	return p.PriceCurrent >= min && p.PriceCurrent <= max
}

func priceBounds(filtros map[string]FilterValue) (float64, float64) {
	min, max := 0.0, math.Inf(1)
	if v, ok := filtros[keyPrecio]; ok && v.Kind == KindRange {
		if v.Min != nil {
			min = *v.Min
		}
		if v.Max != nil {
			max = *v.Max
		}
	}
	if v, ok := filtros[keyPrecioMin]; ok {
		if n, ok := filterNumber(v); ok {
			min = n
		}
	}
	if v, ok := filtros[keyPrecioMax]; ok {
		if n, ok := filterNumber(v); ok {
			max = n
		}
	}
	return min, max
}

func filterNumber(v FilterValue) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindList:
		if len(v.List) > 0 {
			if n, err := strconv.ParseFloat(v.List[0], 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// ── Stage 4: minimum discount ───────────────────────────────────

func matchesMinimumDiscount(p Product, filtros map[string]FilterValue) bool {
	v, ok := filtros[keyDescuentoMinimo]
	if !ok {
		return true
	}
	minimum, ok := filterNumber(v)
	if !ok {
		return true
	}
	if p.PriceAnterior == nil || *p.PriceAnterior <= p.PriceCurrent {
		return false
	}
	return float64(CalculateDiscount(*p.PriceAnterior, p.PriceCurrent)) > minimum
}

// ── Stage 5: arbitrary attribute filters ────────────────────────

type attributeHandler func(p Product, v FilterValue) bool

// specialHandlers hold the keys with business rules of their own; every other
// key goes through the generic bool/list/range handling.
var specialHandlers = map[string]attributeHandler{
	"blackFriday": matchBlackFriday,
	"genero":      matchGeneroFilter,
	"categoria":   matchCategoriaFilter,
	"descuento":   matchDescuentoBuckets,
}

func matchesAttributes(p Product, filtros map[string]FilterValue) bool {
	for key, v := range filtros {
		switch key {
		case keyPrecio, keyPrecioMin, keyPrecioMax, keyDescuentoMinimo:
			continue
		}
		if h, ok := specialHandlers[key]; ok {
			// Special keys keep their rules only for the value kinds the
			// storefront sends: blackFriday as a flag, the rest as lists.
			if key == "blackFriday" && v.Kind == KindBool {
				if v.Bool && !h(p, v) {
					return false
				}
				continue
			}
			if key != "blackFriday" && v.Kind == KindList {
				if !h(p, v) {
					return false
				}
				continue
			}
		}
		if !matchGenericAttribute(p, key, v) {
			return false
		}
	}
	return true
}

func matchBlackFriday(p Product, _ FilterValue) bool {
	for _, c := range p.CategoriesRaw {
		if strings.EqualFold(c, "black_friday") || strings.EqualFold(c, "black-friday") {
			return true
		}
	}
	return false
}

// matchGeneroFilter checks requested genders against the raw categories, not
// the derived gender field: the storefront files gendered collections as
// categories.
func matchGeneroFilter(p Product, v FilterValue) bool {
	for _, want := range v.List {
		for _, c := range p.CategoriesRaw {
			if strings.EqualFold(c, want) {
				return true
			}
		}
	}
	return false
}

func matchCategoriaFilter(p Product, v FilterValue) bool {
	for _, want := range v.List {
		normWant := textnorm.Normalize(want)
		if normWant == "" {
			continue
		}
		if strings.Contains(textnorm.Normalize(p.Category), normWant) {
			return true
		}
		for _, c := range p.CategoriesRaw {
			if strings.Contains(textnorm.Normalize(c), normWant) {
				return true
			}
		}
	}
	return false
}

// matchDescuentoBuckets files the product's discount into the 20/30/40
// buckets the sale view exposes. Unknown requested buckets never match.
func matchDescuentoBuckets(p Product, v FilterValue) bool {
	if p.PriceAnterior == nil {
		return false
	}
	d := CalculateDiscount(*p.PriceAnterior, p.PriceCurrent)
	for _, want := range v.List {
		switch strings.TrimSpace(want) {
		case "40":
			if d >= 35 {
				return true
			}
		case "30":
			if d >= 25 && d < 35 {
				return true
			}
		case "20":
			if d >= 15 && d < 25 {
				return true
			}
		}
	}
	return false
}

func matchGenericAttribute(p Product, key string, v FilterValue) bool {
	switch v.Kind {
	case KindBool:
		if !v.Bool {
			return true
		}
		val, ok := fieldValue(p, key)
		return ok && truthy(val)
	case KindNumber:
		val, ok := fieldValue(p, key)
		if !ok {
			return false
		}
		return numericValue(val) == v.Number
	case KindList:
		if len(v.List) == 0 {
			return true
		}
		val, ok := fieldValue(p, key)
		if !ok {
			return false
		}
		switch fv := val.(type) {
		case []string:
			for _, want := range v.List {
				for _, el := range fv {
					if strings.EqualFold(el, want) {
						return true
					}
				}
			}
		case string:
			for _, want := range v.List {
				if strings.EqualFold(fv, want) {
					return true
				}
			}
		default:
			for _, want := range v.List {
				if strings.EqualFold(asString(val), want) {
					return true
				}
			}
		}
		return false
	case KindRange:
		val, ok := fieldValue(p, key)
		if !ok {
			return false
		}
		n := numericValue(val)
		if v.Min != nil && n < *v.Min {
			return false
		}
		if v.Max != nil && n > *v.Max {
			return false
		}
		return true
	}
	return false
}

// fieldValue resolves a filter key to the product attribute it targets.
// Unknown keys report not-found, which rejects the product.
func fieldValue(p Product, key string) (interface{}, bool) {
	switch key {
	case "material":
		return p.Material, p.Material != ""
	case "estilo", "style":
		return p.Style, true
	case "tipo":
		return p.JewelryType, p.JewelryType != ""
	case "marca", "brand":
		return p.Brand, p.Brand != ""
	case "color":
		return p.Color, p.Color != ""
	case "coleccion", "collection":
		return p.Collection, p.Collection != ""
	case "genero", "gender":
		return p.Gender, true
	case "categorias":
		return p.CategoriesRaw, len(p.CategoriesRaw) > 0
	case "etiquetas", "tags":
		return p.TagsRaw, len(p.TagsRaw) > 0
	case "stock":
		return p.Stock, true
	case "precio":
		return p.PriceCurrent, true
	case "nombre", "titulo":
		return p.Title, p.Title != ""
	case "slug":
		return p.Slug, p.Slug != ""
	case "enOferta", "oferta":
		return p.OnSale, true
	case "nuevo", "esNuevo":
		return p.IsNew, true
	case "disponible":
		return p.Stock > 0, true
	}
	return nil, false
}

func truthy(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	case []string:
		return len(v) > 0
	}
	return val != nil
}

func numericValue(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func asString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// ── Global sort ─────────────────────────────────────────────────

func (pl *Pipeline) sortProducts(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		ri, rj := rankOf(products[i]), rankOf(products[j])
		if ri != rj {
			return ri < rj
		}
		return pl.collator.CompareString(products[i].Title, products[j].Title) < 0
	})
}

// rankOf computes the category priority from jewelryType, falling back to
// category, then to the first raw category.
func rankOf(p Product) int {
	key := p.JewelryType
	if key == "" {
		key = p.Category
	}
	if key == "" && len(p.CategoriesRaw) > 0 {
		key = p.CategoriesRaw[0]
	}
	normKey := textnorm.Normalize(key)
	if normKey == "" {
		return unknownRank
	}
	for _, d := range categoryRank {
		if strings.Contains(normKey, d.keyword) {
			return d.rank
		}
	}
	return unknownRank
}
