package opensea

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

const (
	ordersPath = "/orders/post"

	// listingHorizon es la expiración fija del sell order.
	listingHorizon = 24 * time.Hour
)

// Relist publica un sell order por price con expiración a 24 horas y
// devuelve la confirmación del marketplace. Un non-2xx o error de red
// envuelve domain.ErrRelistFailed con el body de la respuesta — el
// orquestador lo trata como no fatal y el asset queda en el wallet.
func (c *Client) Relist(ctx context.Context, tokenID, contract string, price decimal.Decimal) (domain.RelistResult, error) {
	expiresAt := time.Now().Add(listingHorizon)
	body := sellOrderRequest{
		Asset: orderAsset{
			TokenID:      tokenID,
			TokenAddress: contract,
		},
		StartAmount:    price,
		ExpirationTime: expiresAt.Unix(),
	}

	var resp sellOrderResponse
	if err := c.post(ctx, c.cfg.BaseURL+ordersPath, body, &resp); err != nil {
		return domain.RelistResult{}, fmt.Errorf("opensea.Relist: token %s: %v: %w",
			tokenID, err, domain.ErrRelistFailed)
	}

	result := domain.RelistResult{
		OrderRef:  resp.OrderHash,
		ExpiresAt: expiresAt,
	}
	if resp.ExpirationTime > 0 {
		result.ExpiresAt = time.Unix(resp.ExpirationTime, 0)
	}

	slog.Info("sell order posted",
		"token_id", tokenID,
		"contract", contract,
		"price", price,
		"expires_at", result.ExpiresAt.Format(time.RFC3339),
	)
	return result, nil
}
