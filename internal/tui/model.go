package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/output"
)

type field int

const (
	fieldPrice field = iota
	fieldUpfront
	fieldTerm
	fieldCount
)

var priceStep = decimal.NewFromInt(1_000_000)
var upfrontStep = decimal.NewFromInt(5)

// Model is an interactive installment quote explorer: adjust price, upfront
// percent and term and watch the breakdown and ladder recompute live.
type Model struct {
	engine *calculation.Engine

	price          decimal.Decimal
	upfrontPercent decimal.Decimal
	termIdx        int
	startDate      time.Time

	breakdown domain.PaymentBreakdown
	ladder    []domain.InstallmentPayment
	err       error

	cursor      field
	ladderTable table.Model
	width       int
	height      int
}

// NewModel seeds the explorer with a mid-range purchase.
func NewModel(engine *calculation.Engine) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Due Date", Width: 12},
			{Title: "Amount", Width: 20},
		}),
		table.WithHeight(8),
	)
	m := Model{
		engine:         engine,
		price:          decimal.NewFromInt(85_000_000),
		upfrontPercent: decimal.NewFromInt(40),
		startDate:      time.Now().UTC(),
		ladderTable:    t,
		width:          80,
		height:         24,
	}
	m.recompute()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < fieldCount-1 {
				m.cursor++
			}
			return m, nil
		case "left", "h":
			m.adjust(-1)
			return m, nil
		case "right", "l":
			m.adjust(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ladderTable, cmd = m.ladderTable.Update(msg)
	return m, cmd
}

func (m *Model) adjust(direction int64) {
	step := decimal.NewFromInt(direction)
	terms := m.engine.Config().Installment.Terms
	switch m.cursor {
	case fieldPrice:
		next := m.price.Add(priceStep.Mul(step))
		if next.IsPositive() {
			m.price = next
		}
	case fieldUpfront:
		inst := m.engine.Config().Installment
		next := m.upfrontPercent.Add(upfrontStep.Mul(step))
		if next.GreaterThanOrEqual(inst.MinUpfrontPercent) && next.LessThanOrEqual(inst.MaxUpfrontPercent) {
			m.upfrontPercent = next
		}
	case fieldTerm:
		m.termIdx = (m.termIdx + int(direction) + len(terms)) % len(terms)
	}
	m.recompute()
}

func (m *Model) recompute() {
	terms := m.engine.Config().Installment.Terms
	term := terms[m.termIdx]

	breakdown, err := m.engine.QuoteInstallment(m.price, m.upfrontPercent, term.Months)
	if err != nil {
		m.err = err
		return
	}
	ladder, err := m.engine.LadderFor(breakdown, m.startDate, term.Months)
	if err != nil {
		m.err = err
		return
	}

	m.err = nil
	m.breakdown = breakdown
	m.ladder = ladder

	rows := make([]table.Row, len(ladder))
	for i, p := range ladder {
		rows[i] = table.Row{
			fmt.Sprintf("%d", p.PaymentNumber),
			p.DueDate.Format("2006-01-02"),
			output.FormatCurrency(p.Amount),
		}
	}
	m.ladderTable.SetRows(rows)
}

func (m Model) View() string {
	terms := m.engine.Config().Installment.Terms
	term := terms[m.termIdx]

	view := titleStyle.Render("PenniVault Quote Explorer") + "\n\n"
	view += m.paramRow(fieldPrice, "Item Price", output.FormatCurrency(m.price))
	view += m.paramRow(fieldUpfront, "Upfront Percent", output.FormatPercent(m.upfrontPercent))
	view += m.paramRow(fieldTerm, "Term", fmt.Sprintf("%d months (%s markup)", term.Months, output.FormatPercent(term.MarkupPercent)))
	view += "\n"

	if m.err != nil {
		view += errorStyle.Render(m.err.Error()) + "\n"
	} else {
		view += m.breakdownView()
		view += "\n" + tableBorderStyle.Render(m.ladderTable.View()) + "\n"
	}

	view += helpStyle.Render("↑/↓ select  ←/→ adjust  q quit")
	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}

func (m Model) paramRow(f field, label, value string) string {
	style := labelStyle
	marker := "  "
	if m.cursor == f {
		style = selectedLabelStyle
		marker = "> "
	}
	return marker + style.Render(label) + valueStyle.Render(value) + "\n"
}

func (m Model) breakdownView() string {
	b := m.breakdown
	rows := [][2]string{
		{"Upfront Payment", output.FormatCurrency(b.UpfrontAmount)},
		{"Financed Base", output.FormatCurrency(b.RemainingBase)},
		{"Markup", output.FormatCurrency(b.MarkupAmount)},
		{"Monthly Payment", fmt.Sprintf("%s x %d", output.FormatCurrency(b.MonthlyAmount), b.NumberOfPayments)},
		{"Total Cost", output.FormatCurrency(b.TotalCost)},
	}
	view := ""
	for _, row := range rows {
		view += "  " + labelStyle.Render(row[0]) + valueStyle.Render(row[1]) + "\n"
	}
	return view
}

// Run starts the explorer in the alternate screen.
func Run(engine *calculation.Engine) error {
	_, err := tea.NewProgram(NewModel(engine), tea.WithAltScreen()).Run()
	return err
}
