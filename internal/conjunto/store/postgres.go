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

// uniqueViolation is the SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Schema creates the tables and indexes the stores expect. Applied by
// integration tests; production deploys run it through their migration
// tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS departamentos (
	id     UUID PRIMARY KEY,
	nombre TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ciudades (
	id              UUID PRIMARY KEY,
	nombre          TEXT NOT NULL,
	departamento_id UUID NOT NULL REFERENCES departamentos(id),
	activo          BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS administradores (
	id        UUID PRIMARY KEY,
	nombres   TEXT NOT NULL,
	apellidos TEXT NOT NULL,
	activo    BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS conjuntos (
	id               UUID PRIMARY KEY,
	ciudad_id        UUID NOT NULL REFERENCES ciudades(id),
	administrador_id UUID NOT NULL REFERENCES administradores(id),
	nombre           TEXT NOT NULL,
	direccion        TEXT NOT NULL,
	telefono         TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS conjuntos_telefono_key
	ON conjuntos (telefono) WHERE telefono IS NOT NULL AND telefono <> '';
CREATE INDEX IF NOT EXISTS conjuntos_ciudad_nombre_idx
	ON conjuntos (ciudad_id, LOWER(nombre));

CREATE TABLE IF NOT EXISTS viviendas (
	id          UUID PRIMARY KEY,
	conjunto_id UUID NOT NULL REFERENCES conjuntos(id),
	numero      TEXT NOT NULL,
	tipo        TEXT NOT NULL,
	estado      TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS viviendas_conjunto_numero_key
	ON viviendas (conjunto_id, numero);
`

// PostgresConjuntoStore persists conjuntos through a pgx pool.
type PostgresConjuntoStore struct {
	pool *pgxpool.Pool
}

func NewPostgresConjuntoStore(pool *pgxpool.Pool) *PostgresConjuntoStore {
	return &PostgresConjuntoStore{pool: pool}
}

// EnsureSchema applies Schema. Safe to call repeatedly.
func (s *PostgresConjuntoStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

const conjuntoColumns = `id, ciudad_id, administrador_id, nombre, direccion, COALESCE(telefono, '')`

func scanConjunto(row pgx.Row) (*models.Conjunto, error) {
	var c models.Conjunto
	err := row.Scan(&c.ID, &c.CityID, &c.AdministratorID, &c.Name, &c.Address, &c.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func collectConjuntos(rows pgx.Rows) ([]*models.Conjunto, error) {
	defer rows.Close()
	var out []*models.Conjunto
	for rows.Next() {
		c, err := scanConjunto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Save upserts by ID. A unique index violation maps to sentinel.ErrConflict
// so the service can re-classify the race the pre-check cannot close.
func (s *PostgresConjuntoStore) Save(ctx context.Context, c *models.Conjunto) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conjuntos (id, ciudad_id, administrador_id, nombre, direccion, telefono)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (id) DO UPDATE SET
			ciudad_id = EXCLUDED.ciudad_id,
			administrador_id = EXCLUDED.administrador_id,
			nombre = EXCLUDED.nombre,
			direccion = EXCLUDED.direccion,
			telefono = EXCLUDED.telefono`,
		c.ID, c.CityID, c.AdministratorID, c.Name, c.Address, c.Phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("save conjunto %s: %s: %w", c.ID, pgErr.ConstraintName, sentinel.ErrConflict)
		}
		return fmt.Errorf("save conjunto %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresConjuntoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Conjunto, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+conjuntoColumns+` FROM conjuntos WHERE id = $1`, id)
	return scanConjunto(row)
}

func (s *PostgresConjuntoStore) FindAll(ctx context.Context) ([]*models.Conjunto, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+conjuntoColumns+` FROM conjuntos`)
	if err != nil {
		return nil, err
	}
	return collectConjuntos(rows)
}

func (s *PostgresConjuntoStore) FindByCityAndName(ctx context.Context, cityID uuid.UUID, name string) (*models.Conjunto, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+conjuntoColumns+` FROM conjuntos
		 WHERE ciudad_id = $1 AND LOWER(nombre) = LOWER($2)`, cityID, name)
	return scanConjunto(row)
}

// FindAllByPhone tolerates zero, one, or many matches; the unique index may
// not exist on legacy deployments.
func (s *PostgresConjuntoStore) FindAllByPhone(ctx context.Context, phone string) ([]*models.Conjunto, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+conjuntoColumns+` FROM conjuntos WHERE telefono = $1`, phone)
	if err != nil {
		return nil, err
	}
	return collectConjuntos(rows)
}

func (s *PostgresConjuntoStore) FindByCityID(ctx context.Context, cityID uuid.UUID) ([]*models.Conjunto, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+conjuntoColumns+` FROM conjuntos WHERE ciudad_id = $1`, cityID)
	if err != nil {
		return nil, err
	}
	return collectConjuntos(rows)
}

func (s *PostgresConjuntoStore) FindByDepartmentID(ctx context.Context, departmentID uuid.UUID) ([]*models.Conjunto, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.ciudad_id, c.administrador_id, c.nombre, c.direccion, COALESCE(c.telefono, '')
		FROM conjuntos c
		JOIN ciudades ci ON ci.id = c.ciudad_id
		WHERE ci.departamento_id = $1`, departmentID)
	if err != nil {
		return nil, err
	}
	return collectConjuntos(rows)
}

func (s *PostgresConjuntoStore) FindByCityAndDepartmentID(ctx context.Context, cityID, departmentID uuid.UUID) ([]*models.Conjunto, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.ciudad_id, c.administrador_id, c.nombre, c.direccion, COALESCE(c.telefono, '')
		FROM conjuntos c
		JOIN ciudades ci ON ci.id = c.ciudad_id
		WHERE c.ciudad_id = $1 AND ci.departamento_id = $2`, cityID, departmentID)
	if err != nil {
		return nil, err
	}
	return collectConjuntos(rows)
}

func (s *PostgresConjuntoStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conjuntos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conjunto %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresCityStore resolves cities with the department name denormalized
// via join.
type PostgresCityStore struct {
	pool *pgxpool.Pool
}

func NewPostgresCityStore(pool *pgxpool.Pool) *PostgresCityStore {
	return &PostgresCityStore{pool: pool}
}

func (s *PostgresCityStore) FindByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	var c models.City
	err := s.pool.QueryRow(ctx, `
		SELECT ci.id, ci.nombre, ci.departamento_id, d.nombre, ci.activo
		FROM ciudades ci
		JOIN departamentos d ON d.id = ci.departamento_id
		WHERE ci.id = $1`, id).
		Scan(&c.ID, &c.Name, &c.DepartmentID, &c.DepartmentName, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// PostgresAdministratorStore resolves administrators.
type PostgresAdministratorStore struct {
	pool *pgxpool.Pool
}

func NewPostgresAdministratorStore(pool *pgxpool.Pool) *PostgresAdministratorStore {
	return &PostgresAdministratorStore{pool: pool}
}

func (s *PostgresAdministratorStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Administrator, error) {
	var a models.Administrator
	err := s.pool.QueryRow(ctx,
		`SELECT id, nombres, apellidos, activo FROM administradores WHERE id = $1`, id).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
