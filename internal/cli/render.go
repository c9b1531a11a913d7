package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ledger/internal/core"
)

const ruleWidth = 50

// view renders everything the controller prints. Styles come from a
// renderer bound to the output writer, so non-terminal writers get plain text.
type view struct {
	out      io.Writer
	currency string

	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
}

func newView(out io.Writer, currency string) *view {
	r := lipgloss.NewRenderer(out)
	return &view{
		out:      out,
		currency: currency,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:       r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		bad:      r.NewStyle().Foreground(lipgloss.Color("9")),
		muted:    r.NewStyle().Faint(true),
	}
}

func (v *view) println(s string) {
	fmt.Fprintln(v.out, s)
}

func (v *view) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format, args...)
}

func (v *view) rule(ch string) {
	v.println(v.muted.Render(strings.Repeat(ch, ruleWidth)))
}

func (v *view) heading(s string) {
	v.println("")
	v.println(v.title.Render(s))
	v.rule("-")
}

func (v *view) success(format string, args ...any) {
	v.println(v.ok.Render(fmt.Sprintf(format, args...)))
}

func (v *view) warning(format string, args ...any) {
	v.println(v.warn.Render(fmt.Sprintf(format, args...)))
}

func (v *view) failure(format string, args ...any) {
	v.println(v.bad.Render(fmt.Sprintf(format, args...)))
}

func (v *view) menu() {
	v.println("")
	v.rule("=")
	v.println(v.title.Render("           PERSONAL FINANCE LEDGER"))
	v.rule("=")
	for _, item := range menuItems {
		v.printf("%s. %s\n", item.key, item.label)
	}
	v.rule("=")
}

// money formats m with thousands separators and the currency label,
// e.g. "1,234.50 TL".
func (v *view) money(m core.Money) string {
	return groupThousands(m.String()) + " " + v.currency
}

// signedMoney is money with an explicit "+" for non-negative values.
func (v *view) signedMoney(m core.Money) string {
	if m.Cents >= 0 {
		return "+" + v.money(m)
	}
	return v.money(m)
}

func (v *view) transaction(t core.Transaction) string {
	parts := []string{strings.ToUpper(t.Type.String()) + ": " + v.money(t.Amount)}
	if t.Category != "" {
		parts = append(parts, t.Category)
	}
	parts = append(parts, t.Description)
	return strings.Join(parts, " - ") + " " + v.muted.Render("("+t.Date.Format(core.DateLayout)+")")
}

func (v *view) summary(s core.MonthlySummary) {
	v.printf("Income : %s\n", v.money(s.TotalIncome))
	v.printf("Expense: %s\n", v.money(s.TotalExpense))
	v.net("Net    : ", s.NetBalance)
	if s.Limit.IsZero() {
		v.println(v.muted.Render("Limit  : not set"))
		return
	}
	if s.LimitExceeded {
		v.warning("Limit  : %s (exceeded by %s)", v.money(s.Limit), v.money(s.TotalExpense.Sub(s.Limit)))
		return
	}
	v.printf("Limit  : %s (%s left)\n", v.money(s.Limit), v.money(s.Limit.Sub(s.TotalExpense)))
}

func (v *view) net(label string, m core.Money) {
	line := label + v.signedMoney(m)
	if m.Cents >= 0 {
		v.println(v.ok.Render(line))
	} else {
		v.println(v.bad.Render(line))
	}
}

// groupThousands inserts commas into the integer part of a plain decimal
// string such as "-1234567.89".
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
