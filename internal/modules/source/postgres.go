package source

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
)

// PostgresSource reads shape-A records from a productos table. Used by shops
// that maintain their catalog in the platform database instead of a JSON file.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

const productColumns = `id, sku, slug, titulo, precio, precio_anterior, stock,
	genero, marca, tipo, color, coleccion, categorias, etiquetas, imagenes, created_at`

func scanRecord(scan func(...interface{}) error) (*catalog.RawRecord, error) {
	var (
		r              catalog.RawRecord
		id             string
		sku, slug      sql.NullString
		titulo         sql.NullString
		precioAnterior sql.NullFloat64
		genero, marca  sql.NullString
		tipo, color    sql.NullString
		coleccion      sql.NullString
		categorias     pq.StringArray
		etiquetas      pq.StringArray
		imagenes       pq.StringArray
		createdAt      sql.NullTime
	)
	err := scan(&id, &sku, &slug, &titulo, &r.Precio, &precioAnterior, &r.Stock,
		&genero, &marca, &tipo, &color, &coleccion, &categorias, &etiquetas, &imagenes, &createdAt)
	if err != nil {
		return nil, err
	}
	r.ID = catalog.FlexString(id)
	r.SKU = sku.String
	r.Slug = slug.String
	r.Titulo = titulo.String
	if precioAnterior.Valid {
		v := precioAnterior.Float64
		r.PrecioAnterior = &v
	}
	r.Genero = genero.String
	r.Marca = marca.String
	r.Tipo = tipo.String
	r.Color = color.String
	r.Coleccion = coleccion.String
	r.Categorias = catalog.StringList(categorias)
	r.Etiquetas = catalog.StringList(etiquetas)
	r.Imagenes = catalog.StringList(imagenes)
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		r.CreatedAt = &t
	}
	return &r, nil
}

func (s *PostgresSource) ListAll(ctx context.Context) ([]catalog.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM productos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.RawRecord
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (s *PostgresSource) GetBySlug(ctx context.Context, slug string) (*catalog.RawRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM productos WHERE slug=$1 OR sku=$1 OR id=$1`, slug)
	r, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Touch keeps the connection warm; callers ping at startup the way the rest
// of the platform does.
func (s *PostgresSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
