package ports

import (
	"context"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// Notifier presenta el resultado de cada ciclo al usuario.
type Notifier interface {
	// Notify muestra el resumen del ciclo. En la implementación de
	// consola, imprime una línea compacta o una tabla formateada.
	Notify(ctx context.Context, report domain.CycleReport) error
}
