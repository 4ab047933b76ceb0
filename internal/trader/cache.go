package trader

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// FetchFunc obtiene el set de listings fresco. Puede devolver resultados
// parciales junto con un error (ver ports.MarketProvider).
type FetchFunc func(ctx context.Context) ([]domain.Listing, error)

// ListingCache memoiza el último set de listings durante un TTL fijo,
// evitando llamadas de red redundantes dentro de la ventana de frescura.
// Una sola entrada global: el loop es secuencial, así que nunca hay más
// de un fetch en vuelo y no hace falta locking.
type ListingCache struct {
	ttl       time.Duration
	listings  []domain.Listing
	fetchedAt time.Time
	now       func() time.Time // inyectable en tests
}

// NewListingCache crea una cache vacía con el TTL dado.
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{ttl: ttl, now: time.Now}
}

// GetOrFetch devuelve el set cacheado si sigue fresco; si no, invoca
// fetch y guarda el resultado con el timestamp actual. Un fetch que
// falla sin acumular nada NO se cachea — cachear un set vacío dejaría
// al bot ciego durante todo el TTL; el ciclo siguiente reintenta.
// Un fetch parcial (resultados + error) sí se cachea.
func (c *ListingCache) GetOrFetch(ctx context.Context, fetch FetchFunc) ([]domain.Listing, error) {
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		slog.Info("using cached listings",
			"count", len(c.listings),
			"age", c.now().Sub(c.fetchedAt).Round(time.Second),
		)
		return c.listings, nil
	}

	listings, err := fetch(ctx)
	if err != nil && len(listings) == 0 {
		return nil, err
	}

	c.listings = listings
	c.fetchedAt = c.now()
	return listings, err
}
