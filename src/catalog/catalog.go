package catalog

import (
	"artbook/src/config"
	awslib "artbook/src/lib/aws"
	"artbook/src/models"
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Defaults fill fields a catalog entry leaves out.
type Defaults struct {
	Currency string
	OpensAt  string
	ClosesAt string
}

// Parse reads the catalog document. Every subject starts with its full
// capacity remaining.
func Parse(data []byte, d Defaults) ([]models.Subject, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid json", ErrInvalidCatalog)
	}
	entries := gjson.GetBytes(data, "subjects")
	if !entries.IsArray() {
		return nil, fmt.Errorf("%w: missing subjects list", ErrInvalidCatalog)
	}
	var (
		out  []models.Subject
		errs []error
		seen = map[string]bool{}
	)
	for i, e := range entries.Array() {
		s, err := parseSubject(e, d)
		if err != nil {
			errs = append(errs, fmt.Errorf("subjects[%d]: %w", i, err))
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("subjects[%d]: duplicate id %q", i, s.ID))
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return out, nil
}

func parseSubject(e gjson.Result, d Defaults) (models.Subject, error) {
	name := strings.TrimSpace(e.Get("name").String())
	if name == "" {
		return models.Subject{}, errors.New("name is required")
	}
	id := e.Get("id").String()
	if id == "" {
		id = slug.Make(name)
	}
	kind := types.SubjectKind(e.Get("kind").String())
	if kind != types.SUBJECT_VENUE && kind != types.SUBJECT_EVENT {
		return models.Subject{}, fmt.Errorf("unknown kind %q", kind)
	}
	capacity := int(e.Get("capacity").Int())
	if capacity <= 0 {
		return models.Subject{}, errors.New("capacity must be positive")
	}
	s := models.Subject{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Currency:  strings.ToUpper(e.Get("currency").String()),
		Total:     capacity,
		Remaining: capacity,
		Prices:    map[string]int64{},
		OpensAt:   e.Get("opens_at").String(),
		ClosesAt:  e.Get("closes_at").String(),
	}
	if s.Currency == "" {
		s.Currency = d.Currency
	}
	if kind == types.SUBJECT_VENUE {
		if s.OpensAt == "" {
			s.OpensAt = d.OpensAt
		}
		if s.ClosesAt == "" {
			s.ClosesAt = d.ClosesAt
		}
	}
	var priceErr error
	e.Get("prices").ForEach(func(k, v gjson.Result) bool {
		if v.Int() < 0 {
			priceErr = fmt.Errorf("negative price for %s", k.String())
			return false
		}
		s.Prices[k.String()] = v.Int()
		return true
	})
	if priceErr != nil {
		return models.Subject{}, priceErr
	}
	if starts := e.Get("starts_at"); starts.Exists() {
		t, err := time.Parse(time.RFC3339, starts.String())
		if err != nil {
			return models.Subject{}, fmt.Errorf("starts_at: %w", err)
		}
		s.StartsAt = &t
	}
	return s, nil
}

// Load fetches the catalog from S3 when a bucket is configured, otherwise
// from the local file. A missing local file yields an empty catalog.
func Load(ctx context.Context, cfg *config.Config) ([]models.Subject, error) {
	d := Defaults{Currency: cfg.Currency, OpensAt: cfg.OpensAt, ClosesAt: cfg.ClosesAt}
	if cfg.CatalogS3Bucket != "" {
		data, err := awslib.S3Download(ctx, cfg.CatalogS3Bucket, cfg.CatalogS3Key)
		if err != nil {
			return nil, fmt.Errorf("could not download catalog: %w", err)
		}
		return Parse(data, d)
	}
	data, err := os.ReadFile(cfg.CatalogPath)
	if errors.Is(err, os.ErrNotExist) {
		zap.S().Warnf("[catalog] %s not found, starting with an empty catalog", cfg.CatalogPath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data, d)
}
