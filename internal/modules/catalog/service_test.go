package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource counts listings so tests can tell a cache hit from a recompute.
type fakeSource struct {
	records   []RawRecord
	listCalls int
	fail      bool
}

func (f *fakeSource) ListAll(ctx context.Context) ([]RawRecord, error) {
	if f.fail {
		return nil, errors.New("source down")
	}
	f.listCalls++
	return f.records, nil
}

func (f *fakeSource) GetBySlug(ctx context.Context, slug string) (*RawRecord, error) {
	for i := range f.records {
		if f.records[i].Slug == slug {
			return &f.records[i], nil
		}
	}
	return nil, ErrNotFound
}

func newTestService(src Source) (Service, *ResultCache, *fakeClock) {
	cache, clock := newTestCache(DefaultCacheTTL)
	return NewService(src, cache, nil), cache, clock
}

func TestListProductsNormalizesAndFilters(t *testing.T) {
	src := &fakeSource{records: []RawRecord{
		{Titulo: "Anillo Sol", Slug: "anillo-sol", Precio: 30, Categorias: StringList{"Anillos"}},
		{Titulo: "Reloj Mar", Slug: "reloj-mar", Precio: 90, Categorias: StringList{"Relojes"}},
	}}
	svc, _, _ := newTestService(src)

	got, err := svc.ListProducts(context.Background(), FilterRequest{Categoria: []string{"anillos"}})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Anillo Sol" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Category != "anillos" || len(got[0].Images) < 2 {
		t.Errorf("records must pass through normalization: %+v", got[0])
	}
}

func TestListProductsCachesPerRequest(t *testing.T) {
	src := &fakeSource{records: []RawRecord{{Titulo: "Anillo", Slug: "anillo", Precio: 10}}}
	svc, _, clock := newTestService(src)
	ctx := context.Background()
	req := FilterRequest{Categoria: []string{"anillos"}}

	if _, err := svc.ListProducts(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListProducts(ctx, req); err != nil {
		t.Fatal(err)
	}
	if src.listCalls != 1 {
		t.Fatalf("second identical request must hit the cache, source called %d times", src.listCalls)
	}

	clock.Advance(DefaultCacheTTL + time.Millisecond)
	if _, err := svc.ListProducts(ctx, req); err != nil {
		t.Fatal(err)
	}
	if src.listCalls != 2 {
		t.Fatalf("stale entry must trigger recomputation, source called %d times", src.listCalls)
	}
}

func TestListProductsDistinctRequestsDistinctEntries(t *testing.T) {
	src := &fakeSource{records: []RawRecord{{Titulo: "Anillo", Slug: "anillo"}}}
	svc, cache, _ := newTestService(src)
	ctx := context.Background()

	svc.ListProducts(ctx, FilterRequest{Busqueda: "anillo"})
	svc.ListProducts(ctx, FilterRequest{Busqueda: "reloj"})
	if cache.Len() != 2 {
		t.Errorf("expected two cache entries, got %d", cache.Len())
	}
}

func TestListProductsPropagatesSourceFailure(t *testing.T) {
	svc, _, _ := newTestService(&fakeSource{fail: true})
	if _, err := svc.ListProducts(context.Background(), FilterRequest{}); err == nil {
		t.Fatal("source failure must propagate")
	}
}

func TestGetProduct(t *testing.T) {
	src := &fakeSource{records: []RawRecord{
		{Titulo: "Anillo Sol", Slug: "anillo-sol", Precio: 30},
	}}
	svc, _, _ := newTestService(src)

	p, err := svc.GetProduct(context.Background(), "anillo-sol")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.Title != "Anillo Sol" || len(p.Images) < 2 {
		t.Errorf("lookup must return a normalized product: %+v", p)
	}

	if _, err := svc.GetProduct(context.Background(), "no-existe"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing slug must surface ErrNotFound, got %v", err)
	}
}

func TestClearCacheForcesRecompute(t *testing.T) {
	src := &fakeSource{records: []RawRecord{{Titulo: "Anillo", Slug: "anillo"}}}
	svc, _, _ := newTestService(src)
	ctx := context.Background()

	svc.ListProducts(ctx, FilterRequest{})
	svc.ClearCache()
	svc.ListProducts(ctx, FilterRequest{})
	if src.listCalls != 2 {
		t.Fatalf("clear must drop cached results, source called %d times", src.listCalls)
	}
}
