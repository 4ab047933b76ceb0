package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// Storage persiste el journal del bot: un resumen por ciclo y cada
// trade ejecutado.
type Storage interface {
	// SaveCycle persiste el resumen de un ciclo.
	SaveCycle(ctx context.Context, report domain.CycleReport) error

	// SaveTrade persiste una compra ejecutada (y el resultado del relist).
	SaveTrade(ctx context.Context, trade domain.Trade) error

	// GetTrades devuelve los trades ejecutados en el rango de tiempo dado.
	GetTrades(ctx context.Context, from, to time.Time) ([]domain.Trade, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
