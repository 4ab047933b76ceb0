package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// Wallet lee el balance y ejecuta compras on-chain.
type Wallet interface {
	// Balance devuelve el balance actual en unidades nativas (ETH).
	// Lectura de red sin efectos secundarios.
	Balance(ctx context.Context) (decimal.Decimal, error)

	// Buy construye, firma y transmite una transacción de compra por price.
	// Reevalúa el cap de gasto contra el balance actual ANTES de firmar,
	// aunque la selección ya lo haya comprobado: el balance puede haber
	// cambiado entre selección y ejecución. Devuelve
	// domain.ErrSpendLimitExceeded o domain.ErrSubmission envueltos.
	Buy(ctx context.Context, contract, tokenID string, price decimal.Decimal) (domain.TxResult, error)
}
