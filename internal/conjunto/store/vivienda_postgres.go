package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"victus/internal/conjunto/models"
	"victus/pkg/platform/sentinel"
)

// PostgresViviendaStore persists viviendas through a pgx pool.
type PostgresViviendaStore struct {
	pool *pgxpool.Pool
}

func NewPostgresViviendaStore(pool *pgxpool.Pool) *PostgresViviendaStore {
	return &PostgresViviendaStore{pool: pool}
}

// Save upserts by ID. The (conjunto_id, numero) unique index maps to
// sentinel.ErrConflict.
func (s *PostgresViviendaStore) Save(ctx context.Context, v *models.Vivienda) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO viviendas (id, conjunto_id, numero, tipo, estado)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			numero = EXCLUDED.numero,
			tipo = EXCLUDED.tipo,
			estado = EXCLUDED.estado`,
		v.ID, v.ConjuntoID, v.Numero, v.Tipo, v.Estado)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("save vivienda %s: %s: %w", v.ID, pgErr.ConstraintName, sentinel.ErrConflict)
		}
		return fmt.Errorf("save vivienda %s: %w", v.ID, err)
	}
	return nil
}

func (s *PostgresViviendaStore) FindByConjuntoAndNumero(ctx context.Context, conjuntoID uuid.UUID, numero string) (*models.Vivienda, error) {
	var v models.Vivienda
	err := s.pool.QueryRow(ctx, `
		SELECT id, conjunto_id, numero, tipo, estado
		FROM viviendas
		WHERE conjunto_id = $1 AND numero = $2`, conjuntoID, numero).
		Scan(&v.ID, &v.ConjuntoID, &v.Numero, &v.Tipo, &v.Estado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindByConjuntoID returns one offset/limit page ordered by numero, plus the
// total match count.
func (s *PostgresViviendaStore) FindByConjuntoID(ctx context.Context, conjuntoID uuid.UUID, offset, limit int) ([]*models.Vivienda, int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM viviendas WHERE conjunto_id = $1`, conjuntoID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, conjunto_id, numero, tipo, estado
		FROM viviendas
		WHERE conjunto_id = $1
		ORDER BY numero
		OFFSET $2 LIMIT $3`, conjuntoID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Vivienda
	for rows.Next() {
		var v models.Vivienda
		if err := rows.Scan(&v.ID, &v.ConjuntoID, &v.Numero, &v.Tipo, &v.Estado); err != nil {
			return nil, 0, err
		}
		out = append(out, &v)
	}
	return out, total, rows.Err()
}

func (s *PostgresViviendaStore) DeleteByConjuntoID(ctx context.Context, conjuntoID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM viviendas WHERE conjunto_id = $1`, conjuntoID)
	if err != nil {
		return fmt.Errorf("delete viviendas of conjunto %s: %w", conjuntoID, err)
	}
	return nil
}
