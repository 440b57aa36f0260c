package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/validation"
)

type CertificateRepository interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Certificate], error)
	Create(ctx context.Context, c model.Certificate) (*model.Certificate, error)
}

type certificateRepository struct {
	db *sqlx.DB
}

func NewCertificateRepository(db *sqlx.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

// List returns every certificate on one page; the picker needs them all.
func (r *certificateRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.Certificate], error) {
	q := &query{}
	if s := strings.TrimSpace(params.Search); s != "" {
		q.where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	certs := []model.Certificate{}
	err := r.db.SelectContext(ctx, &certs,
		`SELECT id, title, issuer, issued_on, url FROM certificates`+q.clause()+` ORDER BY LOWER(title) ASC, id ASC`,
		q.args...)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	return &model.Page[model.Certificate]{Count: len(certs), Results: certs}, nil
}

func (r *certificateRepository) Create(ctx context.Context, c model.Certificate) (*model.Certificate, error) {
	if msg := validation.ValidateTitle(c.Title); msg != "" {
		verr := &apierr.ValidationError{}
		verr.Add("title", msg)
		return nil, verr
	}

	c.Title = strings.TrimSpace(c.Title)
	c.IssuedOn = datemath.ToISO(c.IssuedOn)

	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO certificates (title, issuer, issued_on, url) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Title, strings.TrimSpace(c.Issuer), c.IssuedOn, strings.TrimSpace(c.URL),
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return &c, nil
}
