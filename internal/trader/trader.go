package trader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
	"github.com/alejandrodnm/flipbot/internal/ports"
)

// State es un estado del ciclo del orquestador. Cada transición se
// loguea; el ciclo solo termina por cancelación externa del contexto.
type State string

const (
	StateIdle      State = "IDLE"
	StateFetching  State = "FETCHING"
	StateFiltering State = "FILTERING"
	StateScoring   State = "SCORING"
	StateSelecting State = "SELECTING"
	StateBuying    State = "BUYING"
	StateRelisting State = "RELISTING"
	StateCooldown  State = "COOLDOWN"
)

// Config contiene la configuración del orquestador.
type Config struct {
	// CycleInterval es el cooldown fijo entre ciclos.
	CycleInterval time.Duration
	// ProfitThreshold es el margen de reventa hipotético (0.2 = 20%).
	ProfitThreshold decimal.Decimal
	// SpendingLimitFraction es la fracción del balance comprometible
	// por compra.
	SpendingLimitFraction decimal.Decimal
	// CacheTTL es la ventana de frescura de la cache de listings.
	CacheTTL time.Duration
	// DesiredTraits filtra candidatos por traits exactos.
	DesiredTraits map[string]string
	// DryRun evalúa y selecciona pero no compra ni relista.
	DryRun bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		CycleInterval:         60 * time.Second,
		ProfitThreshold:       decimal.NewFromFloat(0.2),
		SpendingLimitFraction: decimal.NewFromFloat(0.25),
		CacheTTL:              10 * time.Minute,
	}
}

// Trader es el orquestador del ciclo compra→reventa.
type Trader struct {
	cfg      Config
	market   ports.MarketProvider
	relister ports.Relister
	wallet   ports.Wallet
	storage  ports.Storage
	notifier ports.Notifier
	cache    *ListingCache
	filter   *Filter
	state    State
}

// New crea un Trader con todas las dependencias inyectadas.
// storage y notifier pueden ser nil (p.ej. en dry-run).
func New(
	cfg Config,
	market ports.MarketProvider,
	relister ports.Relister,
	wallet ports.Wallet,
	storage ports.Storage,
	notifier ports.Notifier,
) *Trader {
	return &Trader{
		cfg:      cfg,
		market:   market,
		relister: relister,
		wallet:   wallet,
		storage:  storage,
		notifier: notifier,
		cache:    NewListingCache(cfg.CacheTTL),
		filter:   NewFilter(cfg.DesiredTraits),
		state:    StateIdle,
	}
}

// Run ejecuta el ciclo perpetuo hasta que el contexto se cancele.
// Todos los errores de runtime se contienen aquí: un ciclo fallido se
// loguea y el loop sigue con el siguiente cooldown.
func (t *Trader) Run(ctx context.Context) error {
	slog.Info("trader starting",
		"interval", t.cfg.CycleInterval,
		"profit_threshold", t.cfg.ProfitThreshold,
		"spend_fraction", t.cfg.SpendingLimitFraction,
		"dry_run", t.cfg.DryRun,
	)

	ticker := time.NewTicker(t.cfg.CycleInterval)
	defer ticker.Stop()

	for {
		t.runCycle(ctx)

		t.transition(StateCooldown)
		select {
		case <-ctx.Done():
			slog.Info("trader stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve su reporte.
func (t *Trader) RunOnce(ctx context.Context) domain.CycleReport {
	return t.cycle(ctx)
}

// runCycle ejecuta un ciclo y notifica/persiste el resultado.
func (t *Trader) runCycle(ctx context.Context) {
	start := time.Now()
	report := t.cycle(ctx)

	if t.notifier != nil {
		if err := t.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if t.storage != nil {
		if err := t.storage.SaveCycle(ctx, report); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("cycle complete",
		"listings", report.Listings,
		"candidates", len(report.Candidates),
		"bought", report.Trade != nil,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// cycle recorre la máquina de estados: fetch (con cache) → filter →
// score → select → buy → relist. Devuelve el reporte del ciclo; nunca
// un error — los fallos se loguean y degradan el ciclo, no el proceso.
func (t *Trader) cycle(ctx context.Context) domain.CycleReport {
	report := domain.CycleReport{At: time.Now().UTC()}

	t.transition(StateFetching)
	balance, err := t.wallet.Balance(ctx)
	if err != nil {
		slog.Error("balance read failed, skipping cycle", "err", err)
		report.FetchFailed = true
		return report
	}
	wallet := domain.NewWalletState(balance, t.cfg.SpendingLimitFraction)
	report.Wallet = wallet
	slog.Info("wallet state",
		"balance", wallet.Balance,
		"spending_cap", wallet.SpendingCap,
	)

	listings, err := t.cache.GetOrFetch(ctx, func(ctx context.Context) ([]domain.Listing, error) {
		return t.market.FetchListings(ctx, wallet.SpendingCap)
	})
	if err != nil {
		// Fetch parcial: seguimos con lo acumulado. Fetch totalmente
		// fallido: el ciclo continúa con cero listings.
		slog.Warn("listing fetch failed", "err", err, "partial", len(listings))
		report.FetchFailed = true
	}
	report.Listings = len(listings)

	t.transition(StateFiltering)
	filtered := t.filter.Apply(listings)
	report.Filtered = len(filtered)

	t.transition(StateScoring)
	scored := domain.Score(filtered, t.cfg.ProfitThreshold)

	t.transition(StateSelecting)
	report.Candidates = candidates(scored, wallet.SpendingCap)
	best, ok := selectCandidate(report.Candidates)
	if !ok {
		slog.Info("no profitable candidate within cap",
			"scored", len(scored),
			"cap", wallet.SpendingCap,
		)
		return report
	}
	report.Selected = &best
	slog.Info("candidate selected",
		"token_id", best.TokenID,
		"collection", best.Collection,
		"floor", best.FloorPrice.Decimal,
		"margin", best.ProfitMargin,
	)

	if t.cfg.DryRun {
		slog.Info("dry-run: skipping buy and relist",
			"token_id", best.TokenID,
			"price", best.FloorPrice.Decimal,
		)
		return report
	}

	t.transition(StateBuying)
	trade, ok := t.buy(ctx, best)
	if !ok {
		return report
	}

	t.transition(StateRelisting)
	t.relist(ctx, best, &trade)
	report.Trade = &trade

	if t.storage != nil {
		if err := t.storage.SaveTrade(ctx, trade); err != nil {
			slog.Warn("failed to journal trade", "err", err, "trade_id", trade.ID)
		}
	}
	return report
}

// buy ejecuta la compra del candidato. Los fallos (cap excedido, fallo
// de firma/broadcast) se loguean y el ciclo salta directo a cooldown —
// la compra fallida no se reintenta dentro del mismo ciclo.
func (t *Trader) buy(ctx context.Context, best domain.ScoredListing) (domain.Trade, bool) {
	result, err := t.wallet.Buy(ctx, best.Contract, best.TokenID, best.FloorPrice.Decimal)
	switch {
	case errors.Is(err, domain.ErrSpendLimitExceeded):
		slog.Warn("buy blocked by spending cap",
			"token_id", best.TokenID,
			"price", best.FloorPrice.Decimal,
		)
		return domain.Trade{}, false
	case errors.Is(err, domain.ErrSubmission):
		slog.Error("buy submission failed", "token_id", best.TokenID, "err", err)
		return domain.Trade{}, false
	case err != nil:
		slog.Error("buy failed", "token_id", best.TokenID, "err", err)
		return domain.Trade{}, false
	}

	slog.Info("purchased listing",
		"token_id", best.TokenID,
		"price", best.FloorPrice.Decimal,
		"tx_hash", result.Hash,
	)
	if refreshed, err := t.wallet.Balance(ctx); err == nil {
		slog.Info("updated wallet balance", "balance", refreshed)
	}

	return domain.Trade{
		ID:          uuid.NewString(),
		TokenID:     best.TokenID,
		Contract:    best.Contract,
		Collection:  best.Collection,
		Name:        best.Name,
		BuyPrice:    best.FloorPrice.Decimal,
		ResalePrice: best.PotentialProfit,
		Margin:      best.ProfitMargin,
		TxHash:      result.Hash,
		ExecutedAt:  time.Now().UTC(),
	}, true
}

// relist publica el sell order del asset comprado a potential_profit.
// Un fallo aquí no revierte la compra ni detiene el loop: el asset queda
// en el wallet sin listar y el error se anota en el trade.
func (t *Trader) relist(ctx context.Context, best domain.ScoredListing, trade *domain.Trade) {
	_, err := t.relister.Relist(ctx, best.TokenID, best.Contract, best.PotentialProfit)
	if err != nil {
		slog.Error("relist failed, asset remains held unlisted",
			"token_id", best.TokenID,
			"resale_price", best.PotentialProfit,
			"err", err,
		)
		trade.RelistError = err.Error()
		return
	}
	trade.Relisted = true
}

// transition cambia el estado del ciclo y lo loguea.
func (t *Trader) transition(next State) {
	slog.Debug("state transition", "from", string(t.state), "to", string(next))
	t.state = next
}

// candidates devuelve los scored listings comprables: margen positivo y
// floor dentro del cap de gasto, en orden de fetch.
func candidates(scored []domain.ScoredListing, cap decimal.Decimal) []domain.ScoredListing {
	result := make([]domain.ScoredListing, 0, len(scored))
	for _, s := range scored {
		if !s.ProfitMargin.IsPositive() {
			continue
		}
		if s.FloorPrice.Decimal.GreaterThan(cap) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// selectCandidate elige exactamente un candidato con orden total
// documentado: mayor profit_margin, empates por menor floor_price, y
// después por orden de fetch (gana el primero visto).
func selectCandidate(cands []domain.ScoredListing) (domain.ScoredListing, bool) {
	if len(cands) == 0 {
		return domain.ScoredListing{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if beats(c, best) {
			best = c
		}
	}
	return best, true
}

// beats devuelve true si a precede estrictamente a b en el orden de
// selección. En empate total devuelve false: se queda el primero visto.
func beats(a, b domain.ScoredListing) bool {
	switch a.ProfitMargin.Cmp(b.ProfitMargin) {
	case 1:
		return true
	case -1:
		return false
	}
	return a.FloorPrice.Decimal.LessThan(b.FloorPrice.Decimal)
}
