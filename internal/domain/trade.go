package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade es una compra ejecutada (y su intento de reventa). Es lo único
// que el bot persiste además del resumen por ciclo.
type Trade struct {
	// ID es un identificador local (UUID), independiente del tx hash.
	ID         string
	TokenID    string
	Contract   string
	Collection string
	Name       string
	BuyPrice   decimal.Decimal
	// ResalePrice es el potential_profit del listing comprado.
	ResalePrice decimal.Decimal
	Margin      decimal.Decimal
	TxHash      string
	// Relisted indica si el sell order post-compra se publicó con éxito.
	// Si es false el asset queda en el wallet sin listar.
	Relisted    bool
	RelistError string
	ExecutedAt  time.Time
}

// CycleReport resume lo que pasó en un ciclo del orquestador. Se usa para
// el notifier de consola y para el journal en SQLite.
type CycleReport struct {
	At          time.Time
	Wallet      WalletState
	Listings    int
	Filtered    int
	Candidates  []ScoredListing
	Selected    *ScoredListing
	Trade       *Trade
	FetchFailed bool
}

// BestMargin devuelve el margen del candidato seleccionado, o cero si no
// hubo candidato en el ciclo.
func (r CycleReport) BestMargin() decimal.Decimal {
	if r.Selected == nil {
		return decimal.Zero
	}
	return r.Selected.ProfitMargin
}
