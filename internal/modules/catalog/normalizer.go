package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/brillante-joyas/catalog-api/internal/modules/textnorm"
)

// placeholderImage backs records that ship no image at all; the gallery UI
// always expects at least two entries.
const placeholderImage = "/images/placeholder.jpg"

// newProductWindow: a record counts as new while its createdAt is this recent.
const newProductWindow = 30 * 24 * time.Hour

// mainCategories is the fixed ordered list searched for the canonical
// category; the first raw category matching an entry wins.
var mainCategories = []string{
	"anillos",
	"gemelos",
	"pendientes",
	"pulseras",
	"collares",
	"colgantes",
	"gafas",
	"relojes",
	"joyeria",
	"bolsos",
}

// jewelrySubcategories are the main categories that imply membership in the
// parent "joyeria" bucket at filtering time.
var jewelrySubcategories = map[string]bool{
	"anillos":    true,
	"gemelos":    true,
	"pendientes": true,
	"pulseras":   true,
	"collares":   true,
	"colgantes":  true,
}

type derivation struct {
	keyword string
	value   string
}

// Ordered pair lists, longest keyword first where one contains another, so
// "plata 925" resolves before "plata" would.
var materialByTag = []derivation{
	{"oro 18k", "oro-18k"},
	{"oro blanco", "oro-18k"},
	{"oro", "oro-18k"},
	{"plata 925", "plata-925"},
	{"plata de ley", "plata-925"},
	{"plata", "plata-925"},
	{"acero inoxidable", "acero-inox"},
	{"acero", "acero-inox"},
	{"titanio", "titanio"},
	{"cuero", "cuero"},
	{"perla", "perla"},
	{"circonita", "circonita"},
}

var genderByTag = []derivation{
	{"mujer", "mujer"},
	{"senora", "mujer"},
	{"dama", "mujer"},
	{"hombre", "hombre"},
	{"caballero", "hombre"},
	{"nino", "infantil"},
	{"nina", "infantil"},
	{"infantil", "infantil"},
	{"unisex", "unisex"},
}

var styleByTag = []derivation{
	{"clasico", "clasico"},
	{"moderno", "moderno"},
	{"vintage", "vintage"},
	{"elegante", "elegante"},
	{"casual", "casual"},
	{"boho", "boho"},
	{"minimalista", "minimalista"},
}

var typeByCategory = []derivation{
	{"anillos", "anillo"},
	{"gemelos", "gemelos"},
	{"pendientes", "pendiente"},
	{"pulseras", "pulsera"},
	{"collares", "collar"},
	{"colgantes", "colgante"},
	{"relojes", "reloj"},
	{"gafas", "gafas"},
	{"bolsos", "bolso"},
}

var jewelryTypeKeywords = []string{"anillo", "pendiente", "collar", "pulsera", "gemelos"}

var brandKeywords = []string{
	"tous", "pandora", "swarovski", "viceroy", "festina", "lotus", "casio",
	"guess", "ray-ban", "rayban", "michael kors", "tommy hilfiger", "hawkers",
	"polaroid", "carolina herrera",
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify builds a URL-safe slug from a title.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(textnorm.Normalize(title), "-")
	return strings.Trim(s, "-")
}

// Normalizer maps raw catalog records into canonical Products. It never
// fails: missing or malformed fields degrade to documented defaults.
// Now is injectable so the recency-based esNuevo flag is testable.
type Normalizer struct {
	Now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

func (n *Normalizer) Normalize(raw RawRecord) Product {
	title := raw.Titulo
	if title == "" {
		title = raw.Nombre
	}
	slug := raw.Slug
	if slug == "" {
		slug = Slugify(title)
	}

	id := string(raw.ID)
	if id == "" {
		id = raw.SKU
	}
	if id == "" {
		id = "local-" + slug
	}

	images := buildImages(raw)

	sku := raw.SKU
	if sku == "" {
		sku = id
	}
	variant := Variant{
		SKU:               sku,
		Price:             raw.Precio,
		Available:         raw.Stock > 0,
		InventoryQuantity: raw.Stock,
	}

	onSale := raw.PrecioAnterior != nil && *raw.PrecioAnterior > raw.Precio

	return Product{
		ID:            id,
		Title:         title,
		Slug:          slug,
		Images:        images,
		PriceCurrent:  raw.Precio,
		PriceAnterior: raw.PrecioAnterior,
		Stock:         raw.Stock,
		Category:      deriveCategory(raw.Categorias),
		CategoriesRaw: raw.Categorias,
		TagsRaw:       raw.Etiquetas,
		Material:      deriveMaterial(raw.Etiquetas, raw.Categorias),
		Gender:        deriveGender(raw.Genero, raw.Etiquetas),
		Style:         deriveStyle(raw.Etiquetas),
		JewelryType:   deriveJewelryType(raw.Tipo, raw.Categorias, raw.Etiquetas),
		Brand:         deriveBrand(raw.Marca, raw.Etiquetas),
		Color:         raw.Color,
		Collection:    raw.Coleccion,
		IsNew:         n.deriveIsNew(raw),
		OnSale:        onSale,
		Variants:      []Variant{variant},
	}
}

// buildImages guarantees the gallery invariant: at least two entries,
// duplicating the single image (or the placeholder) when needed.
func buildImages(raw RawRecord) []string {
	images := make([]string, 0, len(raw.Imagenes))
	for _, img := range raw.Imagenes {
		if img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 && raw.Image != "" {
		images = append(images, raw.Image)
	}
	if len(images) == 0 {
		images = append(images, placeholderImage)
	}
	if len(images) == 1 {
		images = append(images, images[0])
	}
	return images
}

func deriveCategory(categorias []string) string {
	if len(categorias) == 0 {
		return ""
	}
	normalized := make([]string, len(categorias))
	for i, c := range categorias {
		normalized[i] = textnorm.Normalize(c)
	}
	for _, main := range mainCategories {
		for _, c := range normalized {
			if strings.Contains(c, main) {
				// Jewelry subcategories are returned verbatim; the parent
				// "joyeria" membership is resolved at filtering time.
				return main
			}
		}
	}
	return categorias[0]
}

func deriveMaterial(etiquetas, categorias []string) string {
	for _, tag := range etiquetas {
		normTag := textnorm.Normalize(tag)
		for _, d := range materialByTag {
			if strings.Contains(normTag, d.keyword) {
				return d.value
			}
		}
	}
	for _, c := range categorias {
		normCat := textnorm.Normalize(c)
		if strings.Contains(normCat, "plata 925") {
			return "plata-925"
		}
		if strings.Contains(normCat, "oro") {
			return "oro-18k"
		}
	}
	return ""
}

func deriveGender(explicit string, etiquetas []string) string {
	if explicit != "" {
		return textnorm.Normalize(explicit)
	}
	for _, tag := range etiquetas {
		normTag := textnorm.Normalize(tag)
		for _, d := range genderByTag {
			if strings.Contains(normTag, d.keyword) {
				return d.value
			}
		}
	}
	return "unisex"
}

func deriveStyle(etiquetas []string) string {
	for _, tag := range etiquetas {
		normTag := textnorm.Normalize(tag)
		for _, d := range styleByTag {
			if strings.Contains(normTag, d.keyword) {
				return d.value
			}
		}
	}
	return "clasico"
}

func deriveJewelryType(explicit string, categorias, etiquetas []string) string {
	if explicit != "" {
		return textnorm.Normalize(explicit)
	}
	for _, c := range categorias {
		normCat := textnorm.Normalize(c)
		for _, d := range typeByCategory {
			if strings.Contains(normCat, d.keyword) {
				return d.value
			}
		}
	}
	// Tags match with increasing permissiveness: equality, naive plural,
	// then substring containment.
	normTags := make([]string, len(etiquetas))
	for i, tag := range etiquetas {
		normTags[i] = textnorm.Normalize(tag)
	}
	for _, kw := range jewelryTypeKeywords {
		for _, tag := range normTags {
			if tag == kw {
				return kw
			}
		}
	}
	for _, kw := range jewelryTypeKeywords {
		for _, tag := range normTags {
			if tag == kw+"s" {
				return kw
			}
		}
	}
	for _, kw := range jewelryTypeKeywords {
		for _, tag := range normTags {
			if strings.Contains(tag, kw) {
				return kw
			}
		}
	}
	return ""
}

func deriveBrand(explicit string, etiquetas []string) string {
	if explicit != "" {
		return textnorm.Normalize(explicit)
	}
	for _, tag := range etiquetas {
		normTag := textnorm.Normalize(tag)
		for _, kw := range brandKeywords {
			if normTag == kw || strings.Contains(normTag, kw) {
				return kw
			}
		}
	}
	return ""
}

// deriveIsNew replaces the upstream random flag with a deterministic rule:
// a recent createdAt or an explicit novelty tag.
func (n *Normalizer) deriveIsNew(raw RawRecord) bool {
	if raw.CreatedAt != nil && n.Now().Sub(*raw.CreatedAt) < newProductWindow {
		return true
	}
	for _, tag := range raw.Etiquetas {
		normTag := textnorm.Normalize(tag)
		if normTag == "nuevo" || normTag == "novedad" {
			return true
		}
	}
	return false
}
