package catalog

import (
	"encoding/json"
	"testing"
)

func TestCacheKeyCanonicalization(t *testing.T) {
	a := FilterRequest{
		Categoria: []string{"relojes", "anillos"},
		Busqueda:  "Oro",
		Filtros: map[string]FilterValue{
			"descuento": ListFilter("30", "20"),
			"enOferta":  BoolFilter(true),
		},
	}
	b := FilterRequest{
		Categoria: []string{"anillos", "relojes"},
		Busqueda:  "oro",
		Filtros: map[string]FilterValue{
			"enOferta":  BoolFilter(true),
			"descuento": ListFilter("20", "30"),
		},
	}
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("logically equal requests must share a key:\n%s\n%s", a.CacheKey(), b.CacheKey())
	}

	c := FilterRequest{Categoria: []string{"anillos"}}
	if a.CacheKey() == c.CacheKey() {
		t.Error("different requests must not collide")
	}
}

func TestCacheKeyDistinguishesRangeBounds(t *testing.T) {
	zero := 0.0
	a := FilterRequest{Filtros: map[string]FilterValue{"precio": RangeFilter(&zero, nil)}}
	b := FilterRequest{Filtros: map[string]FilterValue{"precio": RangeFilter(nil, nil)}}
	if a.CacheKey() == b.CacheKey() {
		t.Error("an explicit zero bound is not the same as an unset bound")
	}
}

func TestFilterRequestUnmarshal(t *testing.T) {
	payload := `{
		"categoria": ["anillos", "joyeria"],
		"busqueda": "oro",
		"enOferta": true,
		"descuento": [30, "20"],
		"precio": {"min": 10, "max": 50},
		"material": "plata-925"
	}`
	var req FilterRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(req.Categoria) != 2 || req.Busqueda != "oro" {
		t.Errorf("base fields: %+v", req)
	}
	if v := req.Filtros["enOferta"]; v.Kind != KindBool || !v.Bool {
		t.Errorf("enOferta: %+v", v)
	}
	if v := req.Filtros["descuento"]; v.Kind != KindList || len(v.List) != 2 || v.List[0] != "30" {
		t.Errorf("descuento should coerce numbers to strings: %+v", v)
	}
	if v := req.Filtros["precio"]; v.Kind != KindRange || v.Min == nil || *v.Min != 10 || v.Max == nil || *v.Max != 50 {
		t.Errorf("precio range: %+v", v)
	}
	if v := req.Filtros["material"]; v.Kind != KindList || len(v.List) != 1 || v.List[0] != "plata-925" {
		t.Errorf("scalar string becomes a one-element list: %+v", v)
	}
}

func TestStringListTolerance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"array", `["a","b"]`, 2},
		{"single string", `"a"`, 1},
		{"null", `null`, 0},
		{"number", `7`, 0},
		{"object", `{"x":1}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			if err := json.Unmarshal([]byte(tt.in), &l); err != nil {
				t.Fatalf("StringList must never fail, got %v", err)
			}
			if len(l) != tt.want {
				t.Errorf("got %v, want %d entries", l, tt.want)
			}
		})
	}
}

func TestRawRecordTolerantDecoding(t *testing.T) {
	payload := `{
		"id": 42,
		"titulo": "Anillo",
		"precio": 19.9,
		"categorias": "Anillos",
		"etiquetas": null,
		"imagenes": ["a.jpg"]
	}`
	var r RawRecord
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.ID != "42" {
		t.Errorf("numeric id should decode as string, got %q", r.ID)
	}
	if len(r.Categorias) != 1 || r.Categorias[0] != "Anillos" {
		t.Errorf("scalar categorias should wrap in a list: %v", r.Categorias)
	}
	if r.Etiquetas != nil {
		t.Errorf("null etiquetas should stay empty: %v", r.Etiquetas)
	}
}
