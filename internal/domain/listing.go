package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing representa un NFT en venta en el marketplace.
// Es inmutable una vez construido por el adapter: cada ciclo de fetch
// produce un set nuevo de Listings.
type Listing struct {
	Name       string
	TokenID    string
	Collection string
	// Contract es la dirección del contrato ERC-721 del asset.
	Contract string
	// FloorPrice es el precio del primer sell order activo, en unidades
	// nativas (ETH). Valid == false significa que no hay sell order
	// activo y el asset no se puede comprar.
	FloorPrice decimal.NullDecimal
	// Traits es el mapping trait_type → value tal como lo devuelve la API.
	Traits map[string]string
}

// Purchasable devuelve true si el listing tiene un floor price activo.
func (l Listing) Purchasable() bool {
	return l.FloorPrice.Valid
}

// HasTraits devuelve true si el listing contiene TODOS los traits deseados
// con valor exactamente igual. Un mapa vacío siempre devuelve true.
func (l Listing) HasTraits(desired map[string]string) bool {
	for k, want := range desired {
		got, ok := l.Traits[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// ScoredListing es un Listing anotado con las métricas de rentabilidad.
// Derivado, recalculado en cada ciclo, nunca persistido.
type ScoredListing struct {
	Listing
	// PotentialProfit es el precio de reventa hipotético:
	// floor × (1 + profit_threshold).
	PotentialProfit decimal.Decimal
	// ProfitMargin es PotentialProfit − floor, es decir floor × threshold.
	ProfitMargin decimal.Decimal
}

// WalletState es el snapshot del wallet al inicio de un ciclo.
// Se recalcula siempre, nunca se cachea: el balance puede cambiar por
// una compra dentro del mismo ciclo.
type WalletState struct {
	Balance decimal.Decimal
	// SpendingCap = Balance × spending_limit_fraction.
	SpendingCap decimal.Decimal
}

// NewWalletState calcula el cap de gasto a partir del balance actual.
func NewWalletState(balance, fraction decimal.Decimal) WalletState {
	return WalletState{
		Balance:     balance,
		SpendingCap: balance.Mul(fraction),
	}
}

// TxResult es el resultado de una compra on-chain exitosa.
type TxResult struct {
	Hash string
}

// RelistResult es la confirmación del marketplace al publicar un sell order.
type RelistResult struct {
	OrderRef  string
	ExpiresAt time.Time
}
