package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola. Con table=true imprime la
// tabla completa de candidatos; si no, una línea compacta por ciclo.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador sobre un writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.CycleReport) error {
	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(report domain.CycleReport) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d listings → %d traits → %d candidates",
		now, report.Listings, report.Filtered, len(report.Candidates))

	if report.FetchFailed {
		sb.WriteString(" (fetch degraded)")
	}

	switch {
	case report.Trade != nil:
		t := report.Trade
		relist := "relisted@" + t.ResalePrice.String()
		if !t.Relisted {
			relist = "UNLISTED"
		}
		fmt.Fprintf(&sb, " | BOUGHT %s %s @%s %s",
			compactName(t.Name, 20), t.TokenID, t.BuyPrice, relist)
	case report.Selected != nil:
		fmt.Fprintf(&sb, " | best %s margin %s (no trade)",
			report.Selected.TokenID, report.Selected.ProfitMargin)
	default:
		sb.WriteString(" | no profitable candidate")
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de candidatos del ciclo.
func (c *Console) printFull(report domain.CycleReport) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d listings, %d with traits, %d candidates — balance %s, cap %s\n",
		now, report.Listings, report.Filtered, len(report.Candidates),
		report.Wallet.Balance, report.Wallet.SpendingCap)

	if len(report.Candidates) == 0 {
		fmt.Fprintln(c.out, "  no profitable candidates within the spending cap")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Name", "Token", "Collection", "Floor", "Resale", "Margin", "Pick")

	for i, cand := range report.Candidates {
		pick := ""
		if report.Selected != nil && report.Selected.TokenID == cand.TokenID &&
			report.Selected.Contract == cand.Contract {
			pick = "<<"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			compactName(cand.Name, 24),
			cand.TokenID,
			compactName(cand.Collection, 18),
			cand.FloorPrice.Decimal.String(),
			cand.PotentialProfit.String(),
			cand.ProfitMargin.String(),
			pick,
		)
	}
	table.Render()

	if report.Trade != nil {
		t := report.Trade
		status := "relisted at " + t.ResalePrice.String()
		if !t.Relisted {
			status = "HELD UNLISTED: " + t.RelistError
		}
		fmt.Fprintf(c.out, "  bought %s for %s (tx %s) — %s\n",
			t.TokenID, t.BuyPrice, t.TxHash, status)
	}
}

// compactName trunca un nombre largo para la salida de consola.
func compactName(s string, max int) string {
	if s == "" {
		return "?"
	}
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
