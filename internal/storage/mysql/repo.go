package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

const maxTitleLen = 255

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// truncate defensively caps stored titles; translated titles are not
// separately length-checked upstream.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertProperty writes the flattened property keyed by reference.
// Reports created=true for a fresh insert; the mysql driver returns
// RowsAffected 1 for an insert and 2 (or 0 when unchanged) for an update.
func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) (bool, error) {
	imgs, err := json.Marshal(p.Images)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.Reference,
		truncate(p.Title, maxTitleLen),
		p.Description,
		string(p.Type),
		p.Price,
		valInt(p.Bedrooms),
		valInt(p.Bathrooms),
		valInt(p.Area),
		valInt(p.PlotArea),
		p.Country,
		p.City,
		string(imgs),
		p.Status,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repo) UpsertVariant(ctx context.Context, v domain.LocaleVariant) error {
	_, err := r.db.ExecContext(ctx, upsertVariantSQL,
		v.Reference,
		v.Locale,
		truncate(v.Title, maxTitleLen),
		v.Description,
		v.Translated,
	)
	return err
}

func (r *Repo) LogFailure(ctx context.Context, reference, stage, reason string) error {
	_, err := r.db.ExecContext(ctx, insertFailureSQL, reference, stage, truncate(reason, 1024))
	return err
}

// GetProperty reads one property with the requested locale's variant
// applied when present.
func (r *Repo) GetProperty(ctx context.Context, reference, locale string) (domain.Property, error) {
	row := r.db.QueryRowContext(ctx, getPropertySQL, locale, reference)

	var (
		p                   domain.Property
		propType            string
		bedrooms, bathrooms sql.NullInt64
		area, plotArea      sql.NullInt64
		imagesJSON          []byte
		i18nTitle, i18nDesc sql.NullString
	)
	if err := row.Scan(
		&p.Reference,
		&p.Title,
		&p.Description,
		&propType,
		&p.Price,
		&bedrooms,
		&bathrooms,
		&area,
		&plotArea,
		&p.Country,
		&p.City,
		&imagesJSON,
		&p.Status,
		&i18nTitle,
		&i18nDesc,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}

	p.Type = domain.PropertyType(propType)
	p.Bedrooms = nullableInt(bedrooms)
	p.Bathrooms = nullableInt(bathrooms)
	p.Area = nullableInt(area)
	p.PlotArea = nullableInt(plotArea)
	_ = json.Unmarshal(imagesJSON, &p.Images)

	if i18nTitle.Valid && i18nTitle.String != "" {
		p.Title = i18nTitle.String
	}
	if i18nDesc.Valid && i18nDesc.String != "" {
		p.Description = i18nDesc.String
	}
	return p, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
