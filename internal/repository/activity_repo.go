package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hostpanel/internal/model"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Add(ctx context.Context, a model.Activity) (model.Activity, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO activities (activity, type, service, details, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		a.Activity, string(a.Type), a.Service, a.Details, a.Actor, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return model.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

func (r *ActivityRepository) AddBatch(ctx context.Context, items []model.Activity) error {
	batch := &pgx.Batch{}
	for _, a := range items {
		batch.Queue(
			`INSERT INTO activities (activity, type, service, details, actor, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.Activity, string(a.Type), a.Service, a.Details, a.Actor, a.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert seed activity: %w", err)
		}
	}
	return nil
}

func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return total, nil
}

func (r *ActivityRepository) List(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, model.Meta, error) {
	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if typ := strings.TrimSpace(filter.Type); typ != "" && typ != "all" {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, typ)
		argIdx++
	}
	if service := strings.TrimSpace(filter.Service); service != "" && service != "all" {
		where = append(where, fmt.Sprintf("lower(service) = lower($%d)", argIdx))
		args = append(args, service)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activities %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activities: %w", err)
	}

	meta := model.NewMeta(filter.Page, filter.Limit, total)
	offset := meta.Offset()

	dataQuery := fmt.Sprintf(
		`SELECT id, activity, type, service, details, actor, created_at
		 FROM activities %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, meta.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	items := make([]model.Activity, 0)
	for rows.Next() {
		var a model.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.Activity, &typ, &a.Service, &a.Details, &a.Actor, &a.CreatedAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity: %w", err)
		}
		a.Type = model.ActivityType(typ)
		a.CreatedAt = a.CreatedAt.UTC()
		items = append(items, a)
	}

	return items, meta, rows.Err()
}
