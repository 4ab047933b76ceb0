package domain

import "github.com/shopspring/decimal"

// Score calcula las métricas de rentabilidad para cada listing comprable.
// Transformación pura y determinista: los listings sin floor price se
// excluyen del resultado (no se pueden comprar, no se pueden puntuar).
//
// Fórmulas:
//
//	potential_profit = floor × (1 + threshold)
//	profit_margin    = potential_profit − floor = floor × threshold
//
// La igualdad profit_margin == floor × threshold es exacta: toda la
// aritmética es decimal, sin redondeo intermedio.
func Score(listings []Listing, threshold decimal.Decimal) []ScoredListing {
	one := decimal.NewFromInt(1)
	scored := make([]ScoredListing, 0, len(listings))
	for _, l := range listings {
		if !l.Purchasable() {
			continue
		}
		floor := l.FloorPrice.Decimal
		potential := floor.Mul(one.Add(threshold))
		scored = append(scored, ScoredListing{
			Listing:         l,
			PotentialProfit: potential,
			ProfitMargin:    potential.Sub(floor),
		})
	}
	return scored
}
