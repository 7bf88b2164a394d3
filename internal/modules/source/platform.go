package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
)

// platformProduct is the commerce platform's product shape: nested variants,
// images, tags, productType and vendor.
type platformProduct struct {
	ID          json.Number       `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	ProductType string            `json:"product_type"`
	Vendor      string            `json:"vendor"`
	Tags        []string          `json:"tags"`
	CreatedAt   *time.Time        `json:"created_at"`
	Images      []platformImage   `json:"images"`
	Variants    []platformVariant `json:"variants"`
}

type platformImage struct {
	Src string `json:"src"`
}

type platformVariant struct {
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	Available         bool   `json:"available"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type platformPage struct {
	Products []platformProduct `json:"products"`
}

// PlatformSource fetches the paginated product feed of the headless commerce
// platform and maps each product into the local record shape before it
// reaches the normalizer.
type PlatformSource struct {
	baseURL string
	client  *http.Client
}

func NewPlatformSource(baseURL string) *PlatformSource {
	return &PlatformSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *PlatformSource) ListAll(ctx context.Context) ([]catalog.RawRecord, error) {
	var records []catalog.RawRecord
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/products.json?limit=250&page=%d", s.baseURL, page)
		var result platformPage
		if err := s.fetchJSON(ctx, url, &result); err != nil {
			return nil, fmt.Errorf("failed fetching page %d: %w", page, err)
		}
		if len(result.Products) == 0 {
			break
		}
		for _, p := range result.Products {
			records = append(records, mapPlatformProduct(p))
		}
	}
	return records, nil
}

func (s *PlatformSource) GetBySlug(ctx context.Context, slug string) (*catalog.RawRecord, error) {
	url := fmt.Sprintf("%s/products/%s.json", s.baseURL, slug)
	var result struct {
		Product *platformProduct `json:"product"`
	}
	if err := s.fetchJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	if result.Product == nil {
		return nil, catalog.ErrNotFound
	}
	record := mapPlatformProduct(*result.Product)
	return &record, nil
}

func (s *PlatformSource) fetchJSON(ctx context.Context, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

// mapPlatformProduct flattens the platform shape into the local record shape
// the normalizer accepts: first-variant pricing, summed inventory, tags as
// etiquetas, productType as the single category, vendor as brand.
func mapPlatformProduct(p platformProduct) catalog.RawRecord {
	record := catalog.RawRecord{
		ID:        catalog.FlexString(p.ID.String()),
		Titulo:    p.Title,
		Slug:      p.Handle,
		Marca:     p.Vendor,
		Etiquetas: catalog.StringList(p.Tags),
		CreatedAt: p.CreatedAt,
	}
	if p.ProductType != "" {
		record.Categorias = catalog.StringList{p.ProductType}
	}
	for _, img := range p.Images {
		if img.Src != "" {
			record.Imagenes = append(record.Imagenes, img.Src)
		}
	}
	for i, v := range p.Variants {
		if i == 0 {
			record.SKU = v.SKU
			record.Precio = parsePrice(v.Price)
			if prev := parsePrice(v.CompareAtPrice); prev > 0 {
				record.PrecioAnterior = &prev
			}
		}
		record.Stock += v.InventoryQuantity
	}
	return record
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}
