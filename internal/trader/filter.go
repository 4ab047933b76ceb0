package trader

import (
	"github.com/alejandrodnm/flipbot/internal/domain"
)

// Filter retiene listings por traits deseados.
type Filter struct {
	desired map[string]string
}

// NewFilter crea un Filter con los traits deseados.
// Un mapa vacío (o nil) deja pasar todos los listings.
func NewFilter(desired map[string]string) *Filter {
	return &Filter{desired: desired}
}

// Apply devuelve los listings cuyo trait mapping contiene TODOS los
// traits deseados con valor exactamente igual, en el orden original.
// Sin traits deseados devuelve la entrada sin tocar (ley de identidad).
func (f *Filter) Apply(listings []domain.Listing) []domain.Listing {
	if len(f.desired) == 0 {
		return listings
	}
	result := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.HasTraits(f.desired) {
			result = append(result, l)
		}
	}
	return result
}
