package storage

// sqlite.go — journal del bot, ligero y sin ruido.
//
// Estrategia:
//   - `cycles`: resumen por ciclo (listings vistos, candidatos, si hubo
//     compra). Siempre 1 fila por ciclo.
//   - `trades`: una fila por compra ejecutada, con el resultado del
//     relist. Es el histórico que importa.
//   - Prune automático al arrancar: cycles > 30d. Los trades no se
//     borran nunca.
//
// Los precios se guardan como TEXT decimal para no perder precisión.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

const schema = `
-- Resumen ligero por ciclo
CREATE TABLE IF NOT EXISTS cycles (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at   DATETIME NOT NULL,
    listings     INTEGER  NOT NULL DEFAULT 0,
    filtered     INTEGER  NOT NULL DEFAULT 0,
    candidates   INTEGER  NOT NULL DEFAULT 0,
    fetch_failed INTEGER  NOT NULL DEFAULT 0,
    bought       INTEGER  NOT NULL DEFAULT 0,
    best_margin  TEXT     NOT NULL DEFAULT '0'
);

-- Una fila por compra ejecutada
CREATE TABLE IF NOT EXISTS trades (
    id           TEXT PRIMARY KEY,
    token_id     TEXT NOT NULL,
    contract     TEXT NOT NULL,
    collection   TEXT,
    name         TEXT,
    buy_price    TEXT NOT NULL,
    resale_price TEXT NOT NULL,
    margin       TEXT NOT NULL,
    tx_hash      TEXT NOT NULL,
    relisted     INTEGER NOT NULL DEFAULT 0,
    relist_error TEXT,
    executed_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at    ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_at    ON trades(executed_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_token ON trades(token_id);
`

// retentionCycles limita el histórico de resúmenes de ciclo.
const retentionCycles = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia ciclos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveCycle persiste el resumen de un ciclo.
func (s *SQLiteStorage) SaveCycle(ctx context.Context, report domain.CycleReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycles (scanned_at, listings, filtered, candidates, fetch_failed, bought, best_margin)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.At,
		report.Listings,
		report.Filtered,
		len(report.Candidates),
		boolToInt(report.FetchFailed),
		boolToInt(report.Trade != nil),
		report.BestMargin().String(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveCycle: %w", err)
	}
	return nil
}

// SaveTrade persiste una compra ejecutada y su resultado de relist.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, t domain.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, token_id, contract, collection, name,
			buy_price, resale_price, margin, tx_hash, relisted, relist_error, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TokenID, t.Contract, t.Collection, t.Name,
		t.BuyPrice.String(), t.ResalePrice.String(), t.Margin.String(),
		t.TxHash, boolToInt(t.Relisted), t.RelistError, t.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: %w", err)
	}
	return nil
}

// GetTrades devuelve los trades ejecutados en [from, to], más recientes
// primero.
func (s *SQLiteStorage) GetTrades(ctx context.Context, from, to time.Time) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, token_id, contract, collection, name,
			buy_price, resale_price, margin, tx_hash, relisted, relist_error, executed_at
		FROM trades
		WHERE executed_at BETWEEN ? AND ?
		ORDER BY executed_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t                   domain.Trade
			buy, resale, margin string
			relisted            int
			relistErr           sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.TokenID, &t.Contract, &t.Collection, &t.Name,
			&buy, &resale, &margin, &t.TxHash, &relisted, &relistErr, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan: %w", err)
		}
		t.BuyPrice, err = decimal.NewFromString(buy)
		if err != nil {
			return nil, fmt.Errorf("storage.GetTrades: buy_price %q: %w", buy, err)
		}
		t.ResalePrice, err = decimal.NewFromString(resale)
		if err != nil {
			return nil, fmt.Errorf("storage.GetTrades: resale_price %q: %w", resale, err)
		}
		t.Margin, err = decimal.NewFromString(margin)
		if err != nil {
			return nil, fmt.Errorf("storage.GetTrades: margin %q: %w", margin, err)
		}
		t.Relisted = relisted != 0
		t.RelistError = relistErr.String
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra resúmenes de ciclo más viejos que la retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionCycles)
	res, err := s.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, cutoff)
	if err != nil {
		slog.Warn("storage: prune failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("storage: pruned old cycles", "rows", n)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
