package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StringList tolerates the loose shapes the local catalog ships for
// categorias/etiquetas/imagenes: a JSON array, a single string, null or
// anything else (treated as empty).
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}
	*l = nil
	return nil
}

// FlexString accepts JSON strings and numbers; local records carry numeric
// ids while the platform mapping emits strings.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// RawRecord is a catalog record as delivered by a Source, in the local-JSON
// shape. Platform records are mapped into this shape by their Source before
// they reach the Normalizer, so both origins are handled on equal footing.
// Every field is optional upstream.
type RawRecord struct {
	ID             FlexString `json:"id"`
	SKU            string     `json:"sku"`
	Slug           string     `json:"slug"`
	Titulo         string     `json:"titulo"`
	Nombre         string     `json:"nombre"`
	Precio         float64    `json:"precio"`
	PrecioAnterior *float64   `json:"precioAnterior"`
	Stock          int        `json:"stock"`
	Categorias     StringList `json:"categorias"`
	Etiquetas      StringList `json:"etiquetas"`
	Genero         string     `json:"genero"`
	Marca          string     `json:"marca"`
	Tipo           string     `json:"tipo"`
	Color          string     `json:"color"`
	Coleccion      string     `json:"coleccion"`
	Imagenes       StringList `json:"imagenes"`
	Image          string     `json:"image"`
	CreatedAt      *time.Time `json:"createdAt"`
}

// Variant is the synthetic single-variant shape kept for downstream
// consumers that expect a platform-like product.
type Variant struct {
	SKU               string  `json:"sku"`
	Price             float64 `json:"price"`
	Available         bool    `json:"available"`
	InventoryQuantity int     `json:"inventoryQuantity"`
}

// Product is the canonical catalog entity. Immutable once produced by the
// Normalizer; a fresh value is built on every normalization pass.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"titulo"`
	Slug          string    `json:"slug"`
	Images        []string  `json:"imagenes"`
	PriceCurrent  float64   `json:"precio"`
	PriceAnterior *float64  `json:"precioAnterior,omitempty"`
	Stock         int       `json:"stock"`
	Category      string    `json:"categoria,omitempty"`
	CategoriesRaw []string  `json:"categorias"`
	TagsRaw       []string  `json:"etiquetas"`
	Material      string    `json:"material,omitempty"`
	Gender        string    `json:"genero"`
	Style         string    `json:"estilo"`
	JewelryType   string    `json:"tipo,omitempty"`
	Brand         string    `json:"marca,omitempty"`
	Color         string    `json:"color,omitempty"`
	Collection    string    `json:"coleccion,omitempty"`
	IsNew         bool      `json:"esNuevo"`
	OnSale        bool      `json:"enOferta"`
	Variants      []Variant `json:"variants"`
}

// FilterKind tags a FilterValue.
type FilterKind int

const (
	KindBool FilterKind = iota
	KindNumber
	KindList
	KindRange
)

// FilterValue is the tagged variant behind arbitrary attribute filters:
// a boolean flag, a plain number, a list of accepted values, or a numeric
// range. Range bounds are pointers so an unset bound is distinguishable
// from an explicit zero.
type FilterValue struct {
	Kind   FilterKind
	Bool   bool
	Number float64
	List   []string
	Min    *float64
	Max    *float64
}

func BoolFilter(v bool) FilterValue      { return FilterValue{Kind: KindBool, Bool: v} }
func NumberFilter(n float64) FilterValue { return FilterValue{Kind: KindNumber, Number: n} }
func ListFilter(vs ...string) FilterValue {
	return FilterValue{Kind: KindList, List: vs}
}
func RangeFilter(min, max *float64) FilterValue {
	return FilterValue{Kind: KindRange, Min: min, Max: max}
}

func (v *FilterValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = FilterValue{Kind: KindList}
		return nil
	}
	switch trimmed[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolFilter(b)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		list := make([]string, 0, len(raw))
		for _, el := range raw {
			var s string
			if err := json.Unmarshal(el, &s); err == nil {
				list = append(list, s)
				continue
			}
			var n json.Number
			if err := json.Unmarshal(el, &n); err == nil {
				list = append(list, n.String())
			}
		}
		*v = FilterValue{Kind: KindList, List: list}
	case '{':
		var bounds struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		}
		if err := json.Unmarshal(data, &bounds); err != nil {
			return err
		}
		*v = RangeFilter(bounds.Min, bounds.Max)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ListFilter(s)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberFilter(n)
	}
	return nil
}

// FilterRequest is the public input of the catalog core: requested
// categories, a free-text search and any number of attribute filters.
type FilterRequest struct {
	Categoria []string
	Busqueda  string
	Filtros   map[string]FilterValue
}

func (r *FilterRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	out := FilterRequest{Filtros: make(map[string]FilterValue)}
	for key, raw := range fields {
		switch key {
		case "categoria":
			var list StringList
			if err := list.UnmarshalJSON(raw); err != nil {
				return err
			}
			out.Categoria = list
		case "busqueda":
			if err := json.Unmarshal(raw, &out.Busqueda); err != nil {
				return err
			}
		default:
			var v FilterValue
			if err := v.UnmarshalJSON(raw); err != nil {
				return err
			}
			out.Filtros[key] = v
		}
	}
	*r = out
	return nil
}

// CacheKey serializes the request into a canonical cache key: categories,
// filter keys and list values are sorted so logically equal requests share
// one entry regardless of the order the caller built them in.
func (r FilterRequest) CacheKey() string {
	var b strings.Builder

	cats := append([]string(nil), r.Categoria...)
	sort.Strings(cats)
	b.WriteString("cat=")
	b.WriteString(strings.Join(cats, ","))
	b.WriteString("|q=")
	b.WriteString(strings.TrimSpace(strings.ToLower(r.Busqueda)))

	keys := make([]string, 0, len(r.Filtros))
	for k := range r.Filtros {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(r.Filtros[k].cacheKey())
	}
	return b.String()
}

func (v FilterValue) cacheKey() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindList:
		vals := append([]string(nil), v.List...)
		sort.Strings(vals)
		return "[" + strings.Join(vals, ",") + "]"
	case KindRange:
		return fmt.Sprintf("{%s;%s}", formatBound(v.Min), formatBound(v.Max))
	}
	return ""
}

func formatBound(b *float64) string {
	if b == nil {
		return "nil"
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}
