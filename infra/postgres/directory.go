package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/rentmatch/core/model"
)

// Directory reads accounts and equipment from the accounts and equipment tables.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

// ListOwners returns accounts holding the OWNER capability, ordered by id.
func (d *Directory) ListOwners(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	err := pgxscan.Select(ctx, d.pool, &rows,
		`SELECT id, name, latitude, longitude, capabilities FROM accounts
		WHERE $1 = ANY(capabilities) ORDER BY id`, string(model.CapabilityOwner))
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return mapRows[accountRow, model.Account](rows), nil
}

func (d *Directory) GetAccount(ctx context.Context, id string) (model.Account, error) {
	var row accountRow
	err := pgxscan.Get(ctx, d.pool, &row,
		`SELECT id, name, latitude, longitude, capabilities FROM accounts WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return model.Account{}, fmt.Errorf("%w: %s", model.ErrAccountNotFound, id)
		}
		return model.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return row.model(), nil
}

func (d *Directory) GetEquipment(ctx context.Context, id string) (model.Equipment, error) {
	var row equipmentRow
	err := pgxscan.Get(ctx, d.pool, &row,
		`SELECT id, owner_id, name, daily_price, hourly_price FROM equipment WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return model.Equipment{}, fmt.Errorf("%w: %s", model.ErrEquipmentNotFound, id)
		}
		return model.Equipment{}, fmt.Errorf("get equipment %s: %w", id, err)
	}
	return row.model(), nil
}

// Seed upserts accounts then equipment in one transaction.
func (d *Directory) Seed(ctx context.Context, accounts []model.Account, equipment []model.Equipment) error {
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		for _, a := range accounts {
			lat, lon := coords(a.Location)
			caps := make([]string, len(a.Capabilities))
			for i, c := range a.Capabilities {
				caps[i] = string(c)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO accounts (id, name, latitude, longitude, capabilities)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, latitude = EXCLUDED.latitude,
					longitude = EXCLUDED.longitude, capabilities = EXCLUDED.capabilities`,
				a.ID, a.Name, lat, lon, caps); err != nil {
				return fmt.Errorf("upsert account %s: %w", a.ID, err)
			}
		}
		for _, e := range equipment {
			if _, err := tx.Exec(ctx, `INSERT INTO equipment (id, owner_id, name, daily_price, hourly_price)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, name = EXCLUDED.name,
					daily_price = EXCLUDED.daily_price, hourly_price = EXCLUDED.hourly_price`,
				e.ID, e.OwnerID, e.Name, e.Pricing.DailyPrice, e.Pricing.HourlyPrice); err != nil {
				return fmt.Errorf("upsert equipment %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
