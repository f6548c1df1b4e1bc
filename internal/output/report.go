package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/domain"
)

// Supported render formats for the CLI reports.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatCSV     = "csv"
)

type quotePayload struct {
	Breakdown domain.PaymentBreakdown     `json:"breakdown"`
	Ladder    []domain.InstallmentPayment `json:"ladder,omitempty"`
}

// RenderQuote formats an installment breakdown and its payment ladder.
func RenderQuote(b domain.PaymentBreakdown, ladder []domain.InstallmentPayment, format string) ([]byte, error) {
	switch format {
	case FormatConsole:
		return consoleQuote(b, ladder), nil
	case FormatJSON:
		return marshalJSON(quotePayload{Breakdown: b, Ladder: ladder})
	case FormatCSV:
		return csvLadder(ladder)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func consoleQuote(b domain.PaymentBreakdown, ladder []domain.InstallmentPayment) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "INSTALLMENT QUOTE")
	fmt.Fprintln(buf, "=================")
	fmt.Fprintf(buf, "Item Price:          %s\n", FormatCurrency(b.ItemPrice))
	fmt.Fprintf(buf, "Upfront Payment:     %s\n", FormatCurrency(b.UpfrontAmount))
	fmt.Fprintf(buf, "Financed Base:       %s\n", FormatCurrency(b.RemainingBase))
	fmt.Fprintf(buf, "Markup (%s):         %s\n", FormatPercent(b.MarkupPercent), FormatCurrency(b.MarkupAmount))
	fmt.Fprintf(buf, "Monthly Payment:     %s x %d\n", FormatCurrency(b.MonthlyAmount), b.NumberOfPayments)
	if !b.RoundingAdjustment.IsZero() {
		fmt.Fprintf(buf, "Final Adjustment:    %s\n", FormatCurrency(b.RoundingAdjustment))
	}
	fmt.Fprintf(buf, "Total Cost:          %s\n", FormatCurrency(b.TotalCost))

	if len(ladder) > 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "PAYMENT SCHEDULE")
		fmt.Fprintln(buf, "----------------")
		for _, p := range ladder {
			fmt.Fprintf(buf, "  #%-2d  %s  %s  %s\n",
				p.PaymentNumber, p.DueDate.Format("2006-01-02"), FormatCurrency(p.Amount), p.Status)
		}
	}
	return buf.Bytes()
}

func csvLadder(ladder []domain.InstallmentPayment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Payment", "DueDate", "Amount", "Status"}); err != nil {
		return nil, err
	}
	for _, p := range ladder {
		row := []string{
			strconv.Itoa(p.PaymentNumber),
			p.DueDate.Format("2006-01-02"),
			p.Amount.StringFixed(2),
			string(p.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// RenderLockQuote formats a fixed-term lock projection.
func RenderLockQuote(q domain.LockQuote, format string) ([]byte, error) {
	switch format {
	case FormatConsole:
		buf := &bytes.Buffer{}
		fmt.Fprintln(buf, "LOCK QUOTE")
		fmt.Fprintln(buf, "==========")
		fmt.Fprintf(buf, "Principal:       %s\n", FormatCurrency(q.Principal))
		fmt.Fprintf(buf, "Duration:        %d days\n", q.DurationDays)
		fmt.Fprintf(buf, "Annual Rate:     %s\n", FormatPercent(q.AnnualRate))
		fmt.Fprintf(buf, "Interest:        %s (%s)\n", FormatCurrency(q.Interest), q.InterestMode)
		fmt.Fprintf(buf, "Maturity Date:   %s\n", q.MaturityDate.Format("2006-01-02"))
		fmt.Fprintf(buf, "At Maturity:     %s\n", FormatCurrency(q.TotalAtMaturity))
		return buf.Bytes(), nil
	case FormatJSON:
		return marshalJSON(q)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderBreakQuote formats the cost preview of an early lock break.
func RenderBreakQuote(q domain.BreakQuote, format string) ([]byte, error) {
	switch format {
	case FormatConsole:
		buf := &bytes.Buffer{}
		fmt.Fprintln(buf, "EARLY BREAK QUOTE")
		fmt.Fprintln(buf, "=================")
		fmt.Fprintf(buf, "Principal:           %s\n", FormatCurrency(q.Principal))
		fmt.Fprintf(buf, "Penalty:             %s\n", FormatCurrency(q.Penalty))
		fmt.Fprintf(buf, "Forfeited Interest:  %s\n", FormatCurrency(q.ForfeitedInterest))
		fmt.Fprintf(buf, "Total Loss:          %s\n", FormatCurrency(q.TotalLoss))
		fmt.Fprintf(buf, "You Receive:         %s\n", FormatCurrency(q.NetReceived))
		return buf.Bytes(), nil
	case FormatJSON:
		return marshalJSON(q)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderGoal formats a savings goal projection.
func RenderGoal(p domain.GoalProjection, format string) ([]byte, error) {
	switch format {
	case FormatConsole:
		buf := &bytes.Buffer{}
		fmt.Fprintln(buf, "SAVINGS GOAL PROJECTION")
		fmt.Fprintln(buf, "=======================")
		fmt.Fprintf(buf, "Contribution:    %s %s\n", FormatCurrency(p.ContributionAmount), p.Frequency)
		fmt.Fprintf(buf, "Target:          %s\n", FormatCurrency(p.TargetAmount))
		fmt.Fprintf(buf, "Intervals:       %d\n", p.IntervalsNeeded)
		fmt.Fprintf(buf, "Time to Target:  %s (%d days)\n", p.HumanDuration, p.TotalDays)
		fmt.Fprintf(buf, "Projected Total: %s\n", FormatCurrency(p.ProjectedTotal))
		return buf.Bytes(), nil
	case FormatJSON:
		return marshalJSON(p)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderTurnTable formats a group's full round-by-round cycle view.
func RenderTurnTable(g *domain.RotatingGroup, rows []calculation.TurnRow, format string) ([]byte, error) {
	switch format {
	case FormatConsole:
		return consoleTurnTable(g, rows), nil
	case FormatJSON:
		return marshalJSON(rows)
	case FormatCSV:
		return csvTurnTable(rows)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func consoleTurnTable(g *domain.RotatingGroup, rows []calculation.TurnRow) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "GROUP: %s (%d slots, round %d of %d)\n", g.Name, g.TotalSlots, g.CurrentRound, g.TotalRounds)
	fmt.Fprintln(buf, "==================================================")
	for _, row := range rows {
		if row.Accumulating {
			fmt.Fprintf(buf, "  Round %-2d  accumulating              %s\n", row.Round, row.Status)
			continue
		}
		fmt.Fprintf(buf, "  Round %-2d  pos %d -> %-12s %s  %s\n",
			row.Round, row.RecipientPosition, row.MemberKey, FormatCurrency(row.Amount), row.Status)
	}
	return buf.Bytes()
}

func csvTurnTable(rows []calculation.TurnRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Round", "RecipientPosition", "MemberKey", "Amount", "Status", "Accumulating"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := []string{
			strconv.Itoa(row.Round),
			strconv.Itoa(row.RecipientPosition),
			row.MemberKey,
			row.Amount.StringFixed(2),
			string(row.Status),
			strconv.FormatBool(row.Accumulating),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
