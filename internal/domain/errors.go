package domain

import "errors"

// Taxonomía de errores del bot. Todos los errores de runtime se contienen
// en el orquestador con errors.Is — ninguno termina el proceso. Solo los
// errores de configuración en el arranque son fatales.
var (
	// ErrFetchFailed marca un fetch de listings que terminó antes de tiempo
	// (non-2xx o error de transporte). Los resultados parciales acumulados
	// se devuelven junto con el error, no se descartan.
	ErrFetchFailed = errors.New("listing fetch failed")

	// ErrSpendLimitExceeded marca una compra bloqueada por el cap de gasto.
	// No se firma ni se transmite nada.
	ErrSpendLimitExceeded = errors.New("spend limit exceeded")

	// ErrSubmission marca un fallo de firma o broadcast de la transacción
	// (error de red, gas insuficiente, conflicto de nonce).
	ErrSubmission = errors.New("transaction submission failed")

	// ErrRelistFailed marca un fallo al publicar el sell order post-compra.
	// El asset comprado queda en el wallet, sin listar.
	ErrRelistFailed = errors.New("relist failed")
)
