package opensea

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

const assetsPath = "/assets"

// FetchListings pagina GET /assets y devuelve todos los listings con
// precio dentro de [0, priceMax]. Soporta paginación por cursor y por
// offset detrás del mismo método, según la configuración del cliente.
//
// Un fallo a mitad de la paginación (non-2xx o error de transporte)
// termina el fetch de este ciclo: las páginas ya acumuladas se devuelven
// junto con un error que envuelve domain.ErrFetchFailed. Nunca es fatal
// para el proceso.
func (c *Client) FetchListings(ctx context.Context, priceMax decimal.Decimal) ([]domain.Listing, error) {
	var (
		all    []domain.Listing
		cursor string
		offset int
	)

	for page := 0; ; page++ {
		url := fmt.Sprintf("%s%s?order_direction=desc&limit=%d&price_min=0&price_max=%s",
			c.cfg.BaseURL, assetsPath, c.cfg.PageSize, priceMax)
		switch c.cfg.Pagination {
		case PaginateOffset:
			url += fmt.Sprintf("&offset=%d", offset)
		default:
			if cursor != "" {
				url += "&cursor=" + cursor
			}
		}

		var resp assetsResponse
		if err := c.get(ctx, url, &resp); err != nil {
			return all, fmt.Errorf("opensea.FetchListings: page %d: %v: %w",
				page, err, domain.ErrFetchFailed)
		}

		if len(resp.Assets) == 0 {
			break
		}
		all = append(all, mapAssets(resp.Assets)...)

		slog.Debug("fetched listings page",
			"page", page,
			"count", len(resp.Assets),
			"total", len(all),
		)

		if c.cfg.Pagination == PaginateOffset {
			offset += c.cfg.PageSize
			continue
		}
		if resp.Next == "" {
			break
		}
		cursor = resp.Next
	}

	slog.Info("listings fetched", "total", len(all), "price_max", priceMax)
	return all, nil
}
