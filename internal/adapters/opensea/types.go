package opensea

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// DTOs raw del API del marketplace. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace aquí mismo.

// assetsResponse es la respuesta paginada de GET /assets.
type assetsResponse struct {
	Assets []assetRaw `json:"assets"`
	// Next es el cursor opaco de la página siguiente (modo cursor).
	// Ausente o vacío en la última página.
	Next string `json:"next"`
}

// assetRaw es un NFT listado tal como lo devuelve el API.
type assetRaw struct {
	Name          string           `json:"name"`
	TokenID       string           `json:"token_id"`
	Collection    collectionRaw    `json:"collection"`
	AssetContract assetContractRaw `json:"asset_contract"`
	Traits        []traitRaw       `json:"traits"`
	SellOrders    []sellOrderRaw   `json:"sell_orders"`
}

type collectionRaw struct {
	Name string `json:"name"`
}

type assetContractRaw struct {
	Address string `json:"address"`
}

type traitRaw struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// sellOrderRaw es un sell order activo. CurrentPrice viene como string en
// la unidad mínima de la chain (wei para un asset de 18 decimales).
type sellOrderRaw struct {
	CurrentPrice string `json:"current_price"`
}

// sellOrderRequest es el body del POST /orders/post.
type sellOrderRequest struct {
	Asset          orderAsset      `json:"asset"`
	StartAmount    decimal.Decimal `json:"start_amount"`
	ExpirationTime int64           `json:"expiration_time"`
}

type orderAsset struct {
	TokenID      string `json:"token_id"`
	TokenAddress string `json:"token_address"`
}

// sellOrderResponse es el order record creado que devuelve el API.
type sellOrderResponse struct {
	OrderHash      string `json:"order_hash"`
	ExpirationTime int64  `json:"expiration_time"`
}

// mapAssets convierte los assets raw a domain.Listing.
func mapAssets(assets []assetRaw) []domain.Listing {
	listings := make([]domain.Listing, 0, len(assets))
	for _, a := range assets {
		listings = append(listings, domain.Listing{
			Name:       a.Name,
			TokenID:    a.TokenID,
			Collection: a.Collection.Name,
			Contract:   a.AssetContract.Address,
			FloorPrice: floorPrice(a),
			Traits:     mapTraits(a.Traits),
		})
	}
	return listings
}

// floorPrice extrae el precio del primer sell order, convertido de la
// unidad mínima de la chain a unidades nativas (÷ 10^18). Sin sell orders
// → NullDecimal inválido: el listing no se puede comprar.
func floorPrice(a assetRaw) decimal.NullDecimal {
	if len(a.SellOrders) == 0 || a.SellOrders[0].CurrentPrice == "" {
		return decimal.NullDecimal{}
	}
	wei, err := decimal.NewFromString(a.SellOrders[0].CurrentPrice)
	if err != nil {
		slog.Warn("unparseable sell order price, treating as no floor",
			"token_id", a.TokenID,
			"price", a.SellOrders[0].CurrentPrice,
		)
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: wei.Shift(-18), Valid: true}
}

func mapTraits(traits []traitRaw) map[string]string {
	m := make(map[string]string, len(traits))
	for _, t := range traits {
		m[t.TraitType] = t.Value
	}
	return m
}
