package catalog

import (
	"testing"
	"time"
)

func fixedNormalizer(now time.Time) *Normalizer {
	return &Normalizer{Now: func() time.Time { return now }}
}

func ptr(f float64) *float64 { return &f }

func TestNormalizeImagesInvariant(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name string
		raw  RawRecord
		want int
	}{
		{"no images at all", RawRecord{Titulo: "Anillo"}, 2},
		{"single image field", RawRecord{Titulo: "Anillo", Image: "a.jpg"}, 2},
		{"single imagenes entry", RawRecord{Titulo: "Anillo", Imagenes: StringList{"a.jpg"}}, 2},
		{"two images", RawRecord{Titulo: "Anillo", Imagenes: StringList{"a.jpg", "b.jpg"}}, 2},
		{"three images", RawRecord{Titulo: "Anillo", Imagenes: StringList{"a.jpg", "b.jpg", "c.jpg"}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := n.Normalize(tt.raw)
			if len(p.Images) != tt.want {
				t.Errorf("got %d images, want %d: %v", len(p.Images), tt.want, p.Images)
			}
			if len(p.Images) < 2 {
				t.Errorf("gallery invariant broken: %v", p.Images)
			}
		})
	}
}

func TestNormalizeSingleImageDuplicated(t *testing.T) {
	p := NewNormalizer().Normalize(RawRecord{Titulo: "Anillo", Imagenes: StringList{"a.jpg"}})
	if p.Images[0] != "a.jpg" || p.Images[1] != "a.jpg" {
		t.Errorf("single image should be duplicated, got %v", p.Images)
	}
}

func TestNormalizeIDDerivation(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name string
		raw  RawRecord
		want string
	}{
		{"explicit id wins", RawRecord{ID: "p-1", SKU: "SK-1", Slug: "anillo"}, "p-1"},
		{"sku next", RawRecord{SKU: "SK-1", Slug: "anillo"}, "SK-1"},
		{"local slug fallback", RawRecord{Slug: "anillo-oro"}, "local-anillo-oro"},
		{"slugified title fallback", RawRecord{Titulo: "Anillo de Oro"}, "local-anillo-de-oro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := n.Normalize(tt.raw); p.ID != tt.want {
				t.Errorf("got id %q, want %q", p.ID, tt.want)
			}
		})
	}
}

func TestNormalizeDerivationPrecedence(t *testing.T) {
	n := NewNormalizer()

	p := n.Normalize(RawRecord{
		Titulo:    "Pulsera",
		Genero:    "Mujer",
		Etiquetas: StringList{"hombre"},
	})
	if p.Gender != "mujer" {
		t.Errorf("explicit genero must win over tags, got %q", p.Gender)
	}

	p = n.Normalize(RawRecord{
		Titulo:     "Pulsera",
		Tipo:       "Pulsera",
		Categorias: StringList{"Anillos"},
	})
	if p.JewelryType != "pulsera" {
		t.Errorf("explicit tipo must win over categories, got %q", p.JewelryType)
	}

	p = n.Normalize(RawRecord{
		Titulo:    "Pulsera",
		Marca:     "Tous",
		Etiquetas: StringList{"pandora"},
	})
	if p.Brand != "tous" {
		t.Errorf("explicit marca must win over tags, got %q", p.Brand)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p := NewNormalizer().Normalize(RawRecord{Titulo: "Colgante"})
	if p.Gender != "unisex" {
		t.Errorf("gender default: got %q, want unisex", p.Gender)
	}
	if p.Style != "clasico" {
		t.Errorf("style default: got %q, want clasico", p.Style)
	}
	if p.Material != "" || p.Brand != "" || p.Category != "" {
		t.Errorf("nullable derivations should stay empty: %+v", p)
	}
}

func TestNormalizeCategoryDerivation(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name       string
		categorias StringList
		want       string
	}{
		{"known main category", StringList{"Anillos"}, "anillos"},
		{"accented entry", StringList{"Relójes"}, "relojes"},
		{"first known wins by list order", StringList{"Gemelos", "Anillos"}, "anillos"},
		{"unknown falls back to first raw", StringList{"Edicion Limitada"}, "Edicion Limitada"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := n.Normalize(RawRecord{Titulo: "X", Categorias: tt.categorias})
			if p.Category != tt.want {
				t.Errorf("got %q, want %q", p.Category, tt.want)
			}
		})
	}
}

func TestNormalizeMaterialDerivation(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name string
		raw  RawRecord
		want string
	}{
		{"tag oro", RawRecord{Etiquetas: StringList{"oro"}}, "oro-18k"},
		{"tag plata 925", RawRecord{Etiquetas: StringList{"plata 925"}}, "plata-925"},
		{"tag acero", RawRecord{Etiquetas: StringList{"acero"}}, "acero-inox"},
		{"first tag wins", RawRecord{Etiquetas: StringList{"plata", "oro"}}, "plata-925"},
		{"category fallback oro", RawRecord{Categorias: StringList{"Joyas de Oro"}}, "oro-18k"},
		{"category fallback plata 925", RawRecord{Categorias: StringList{"Plata 925"}}, "plata-925"},
		{"no signal", RawRecord{Etiquetas: StringList{"regalo"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw.Titulo = "X"
			if p := n.Normalize(tt.raw); p.Material != tt.want {
				t.Errorf("got %q, want %q", p.Material, tt.want)
			}
		})
	}
}

func TestNormalizeJewelryTypeFromTags(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name string
		tags StringList
		want string
	}{
		{"exact", StringList{"anillo"}, "anillo"},
		{"plural", StringList{"anillos"}, "anillo"},
		{"substring", StringList{"anillo compromiso"}, "anillo"},
		{"none", StringList{"regalo"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := n.Normalize(RawRecord{Titulo: "X", Etiquetas: tt.tags})
			if p.JewelryType != tt.want {
				t.Errorf("got %q, want %q", p.JewelryType, tt.want)
			}
		})
	}
}

func TestNormalizeOnSale(t *testing.T) {
	n := NewNormalizer()
	p := n.Normalize(RawRecord{Titulo: "X", Precio: 50, PrecioAnterior: ptr(80)})
	if !p.OnSale {
		t.Error("expected onSale with precioAnterior > precio")
	}
	p = n.Normalize(RawRecord{Titulo: "X", Precio: 80, PrecioAnterior: ptr(80)})
	if p.OnSale {
		t.Error("equal prices are not a sale")
	}
	p = n.Normalize(RawRecord{Titulo: "X", Precio: 80})
	if p.OnSale {
		t.Error("no previous price is not a sale")
	}
}

func TestNormalizeIsNewDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	n := fixedNormalizer(now)

	recent := now.Add(-10 * 24 * time.Hour)
	old := now.Add(-90 * 24 * time.Hour)

	if p := n.Normalize(RawRecord{Titulo: "X", CreatedAt: &recent}); !p.IsNew {
		t.Error("recent createdAt should flag esNuevo")
	}
	if p := n.Normalize(RawRecord{Titulo: "X", CreatedAt: &old}); p.IsNew {
		t.Error("old createdAt should not flag esNuevo")
	}
	if p := n.Normalize(RawRecord{Titulo: "X", Etiquetas: StringList{"Novedad"}}); !p.IsNew {
		t.Error("novelty tag should flag esNuevo")
	}
	if p := n.Normalize(RawRecord{Titulo: "X"}); p.IsNew {
		t.Error("no signal should not flag esNuevo")
	}
	// Same record, same clock: always the same answer.
	raw := RawRecord{Titulo: "X", CreatedAt: &recent}
	for i := 0; i < 5; i++ {
		if !n.Normalize(raw).IsNew {
			t.Fatal("esNuevo must be deterministic")
		}
	}
}

func TestNormalizeVariantSummary(t *testing.T) {
	p := NewNormalizer().Normalize(RawRecord{Titulo: "X", SKU: "AB-1", Precio: 25, Stock: 3})
	if len(p.Variants) != 1 {
		t.Fatalf("want exactly one synthetic variant, got %d", len(p.Variants))
	}
	v := p.Variants[0]
	if v.SKU != "AB-1" || v.Price != 25 || !v.Available || v.InventoryQuantity != 3 {
		t.Errorf("unexpected variant: %+v", v)
	}

	p = NewNormalizer().Normalize(RawRecord{Titulo: "X", SKU: "AB-1", Stock: 0})
	if p.Variants[0].Available {
		t.Error("zero stock must not be available")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Anillo de Oro", "anillo-de-oro"},
		{"Colgante Corazón 925", "colgante-corazon-925"},
		{"  Reloj  ", "reloj"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
