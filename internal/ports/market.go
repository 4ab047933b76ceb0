package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// MarketProvider obtiene los listings activos del marketplace.
type MarketProvider interface {
	// FetchListings pagina el endpoint de assets hasta agotar los
	// resultados, limitado a listings con precio ≤ priceMax.
	// Si una página falla (non-2xx o error de transporte) devuelve las
	// páginas ya acumuladas junto con un error que envuelve
	// domain.ErrFetchFailed — nunca descarta resultados parciales.
	FetchListings(ctx context.Context, priceMax decimal.Decimal) ([]domain.Listing, error)
}

// Relister publica sell orders en el marketplace.
type Relister interface {
	// Relist publica un sell order por price con expiración a 24 horas.
	// Un fallo envuelve domain.ErrRelistFailed con el body de la respuesta.
	Relist(ctx context.Context, tokenID, contract string, price decimal.Decimal) (domain.RelistResult, error)
}
