package store

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	name        string
	schema      string
	feeColumn   string
	placeholder func(n int) string
	isUnique    func(err error) bool
}

func (d Dialect) String() string { return d.name }

// Postgres is the dialect used with the pgx driver.
var Postgres = Dialect{
	name: "postgres",
	schema: `
	CREATE TABLE IF NOT EXISTS alunos (
		id               TEXT PRIMARY KEY,
		nome             TEXT NOT NULL CHECK (nome <> ''),
		matricula        TEXT NOT NULL UNIQUE CHECK (matricula <> ''),
		mensalidade      NUMERIC(10,2) NOT NULL CHECK (mensalidade >= 0),
		status_pagamento TEXT NOT NULL DEFAULT 'Pendente' CHECK (status_pagamento IN ('Pago', 'Pendente')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_alunos_nome ON alunos (nome);
	`,
	feeColumn:   "mensalidade::float8",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	isUnique: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// SQLite is the dialect used with go-sqlite3.
var SQLite = Dialect{
	name: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS alunos (
		id               TEXT PRIMARY KEY,
		nome             TEXT NOT NULL CHECK (nome <> ''),
		matricula        TEXT NOT NULL UNIQUE CHECK (matricula <> ''),
		mensalidade      REAL NOT NULL CHECK (mensalidade >= 0),
		status_pagamento TEXT NOT NULL DEFAULT 'Pendente' CHECK (status_pagamento IN ('Pago', 'Pendente')),
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_alunos_nome ON alunos (nome);
	`,
	feeColumn:   "mensalidade",
	placeholder: func(int) string { return "?" },
	isUnique: func(err error) bool {
		var sqlErr sqlite3.Error
		return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
	},
}
