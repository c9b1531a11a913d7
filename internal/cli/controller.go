package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{"1", "Add Income"},
	{"2", "Add Expense"},
	{"3", "View Transactions"},
	{"4", "Balance Status"},
	{"5", "Monthly Summary"},
	{"6", "Set Monthly Limit"},
	{"7", "Yearly Summary"},
	{"8", "Monthly History"},
	{"0", "Exit"},
}

// recentPerType is how many of the latest incomes and expenses are listed.
const recentPerType = 10

// Controller runs the interactive menu. It holds no business logic: every
// action parses input, makes one call into the ledger or settings manager
// and prints the result.
type Controller struct {
	ledger   *services.Ledger
	settings *services.SettingsManager
	in       *bufio.Scanner
	view     *view
	now      func() time.Time
	logger   *log.Logger
}

type Option func(*Controller)

// WithClock overrides the time source used for "now" and "current month".
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func NewController(ledger *services.Ledger, settings *services.SettingsManager, in io.Reader, out io.Writer, currency string, opts ...Option) *Controller {
	c := &Controller{
		ledger:   ledger,
		settings: settings,
		in:       bufio.NewScanner(in),
		view:     newView(out, currency),
		now:      time.Now,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentCLI)
	return c
}

// Run shows the menu until the user exits or input ends. Errors from
// individual actions are reported and the menu is shown again; Run itself
// only fails when the input cannot be read.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.view.println("\nTerminating application...")
			return nil
		}

		c.view.menu()
		choice, err := c.readLine("\nMake your choice (0-8): ")
		if errors.Is(err, io.EOF) {
			c.view.println("\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		var actionErr error
		switch strings.ToLower(choice) {
		case "1":
			actionErr = c.addTransaction(ctx, core.Income)
		case "2":
			actionErr = c.addTransaction(ctx, core.Expense)
		case "3":
			c.listTransactions()
		case "4":
			c.showBalance()
		case "5":
			actionErr = c.showMonthlySummary()
		case "6":
			actionErr = c.setMonthlyLimit(ctx)
		case "7":
			actionErr = c.showYearlySummary()
		case "8":
			c.showHistory()
		case "0", "q", "quit", "exit":
			c.view.println("\nExiting application. Have a good day!")
			return nil
		default:
			c.view.failure("Invalid choice! Please enter a number between 0-8.")
		}

		if errors.Is(actionErr, io.EOF) {
			c.view.println("\nGoodbye!")
			return nil
		}
		if actionErr != nil {
			c.report(ctx, actionErr)
		}
	}
}

func (c *Controller) report(ctx context.Context, err error) {
	switch {
	case core.IsStorage(err):
		c.view.failure("Could not save your data: %v", err)
		c.logger.ErrorContext(ctx, "Storage error", log.FieldError, err)
	case core.IsValidation(err):
		c.view.failure("Invalid input: %v", err)
	default:
		c.view.failure("An unexpected error occurred: %v", err)
		c.logger.ErrorContext(ctx, "Unexpected error", log.FieldError, err)
	}
}

func (c *Controller) addTransaction(ctx context.Context, typ core.TransactionType) error {
	c.view.heading(strings.ToUpper(typ.String()) + " INFORMATION")

	for {
		amount, err := c.askAmount("Amount (" + c.view.currency + "): ")
		if err != nil {
			return err
		}
		category, err := c.readLine("Category (optional): ")
		if err != nil {
			return err
		}
		description, err := c.askRequired("Description: ", "Description cannot be empty!")
		if err != nil {
			return err
		}
		date, err := c.askDate()
		if err != nil {
			return err
		}

		t, err := c.ledger.Record(ctx, typ, amount, description, category, date)
		if core.IsValidation(err) {
			c.view.failure("Invalid input: %v. Please try again.", err)
			continue
		}
		if err != nil {
			return err
		}

		c.view.success("%s successfully added: %s", titleCase(typ.String()), c.view.money(t.Amount))
		limit, _ := c.settings.Limit()
		if typ == core.Expense {
			c.checkLimit(t.YearMonth(), limit)
		}
		c.ledger.RefreshSnapshot(ctx, limit)
		return nil
	}
}

func (c *Controller) checkLimit(ym core.YearMonth, limit core.Money) {
	s := c.ledger.MonthlySummary(ym, limit)
	if s.LimitExceeded {
		c.view.warning("Warning: You have exceeded your monthly limit of %s for %s!", c.view.money(limit), ym)
	}
}

func (c *Controller) listTransactions() {
	all := c.ledger.Transactions()
	if len(all) == 0 {
		c.view.println("\nNo transactions recorded yet.")
		return
	}

	c.view.heading("TOTAL " + strconv.Itoa(len(all)) + " TRANSACTIONS")
	for _, group := range []struct {
		label string
		typ   core.TransactionType
	}{{"INCOMES:", core.Income}, {"EXPENSES:", core.Expense}} {
		txs := c.ledger.ByType(group.typ)
		if len(txs) == 0 {
			continue
		}
		c.view.println("\n" + group.label)
		if len(txs) > recentPerType {
			txs = txs[len(txs)-recentPerType:]
		}
		for _, t := range txs {
			c.view.println("   " + c.view.transaction(t))
		}
	}
	if len(all) > 2*recentPerType {
		c.view.println("")
		c.view.println(c.view.muted.Render("... (showing the latest " + strconv.Itoa(recentPerType) +
			" of each type, total: " + strconv.Itoa(len(all)) + ")"))
	}
}

func (c *Controller) showBalance() {
	b := c.ledger.Balance()
	c.view.heading("BALANCE STATUS")
	c.view.printf("Total Income : %s\n", c.view.money(b.TotalIncome))
	c.view.printf("Total Expense: %s\n", c.view.money(b.TotalExpense))
	c.view.rule("-")
	c.view.net("Net Balance  : ", b.Net)

	if cats := c.ledger.Categories(core.Income); len(cats) > 0 {
		c.view.println("\nIncome Categories: " + strings.Join(cats, ", "))
	}
	if cats := c.ledger.Categories(core.Expense); len(cats) > 0 {
		c.view.println("Expense Categories: " + strings.Join(cats, ", "))
	}
}

func (c *Controller) showMonthlySummary() error {
	current := core.YearMonthOf(c.now())
	var ym core.YearMonth
	for {
		s, err := c.readLine("Month (YYYY-MM, blank for " + current.String() + "): ")
		if err != nil {
			return err
		}
		if s == "" {
			ym = current
			break
		}
		if ym, err = core.ParseYearMonth(s); err == nil {
			break
		}
		c.view.failure("Please enter the month as YYYY-MM!")
	}

	limit, _ := c.settings.Limit()
	c.view.heading("Monthly Summary - " + ym.String())
	c.view.summary(c.ledger.MonthlySummary(ym, limit))
	return nil
}

func (c *Controller) setMonthlyLimit(ctx context.Context) error {
	c.view.heading("Set Monthly Spending Limit")
	if limit, ok := c.settings.Limit(); ok {
		c.view.println("Current limit: " + c.view.money(limit))
	}

	for {
		s, err := c.readLine("Enter new monthly limit (" + c.view.currency + ", 0 to disable): ")
		if err != nil {
			return err
		}
		limit, err := core.ParseDecimal(s)
		if err == nil {
			err = c.settings.SetLimit(ctx, limit)
		}
		if core.IsValidation(err) {
			c.view.failure("Invalid input: %v. Please enter a number that is zero or more.", err)
			continue
		}
		if err != nil {
			return err
		}

		if limit.IsZero() {
			c.view.success("Monthly limit disabled")
		} else {
			c.view.success("Monthly limit set to %s", c.view.money(limit))
		}
		c.ledger.RefreshSnapshot(ctx, limit)
		return nil
	}
}

func (c *Controller) showYearlySummary() error {
	current := c.now().Year()
	var year int
	for {
		s, err := c.readLine("Year (blank for " + strconv.Itoa(current) + "): ")
		if err != nil {
			return err
		}
		if s == "" {
			year = current
			break
		}
		if y, err := strconv.Atoi(s); err == nil && y > 0 && y < 10000 {
			year = y
			break
		}
		c.view.failure("Please enter a valid year!")
	}

	b := c.ledger.YearlySummary(year)
	c.view.heading("Yearly Summary - " + strconv.Itoa(year))
	c.view.printf("Income : %s\n", c.view.money(b.TotalIncome))
	c.view.printf("Expense: %s\n", c.view.money(b.TotalExpense))
	c.view.net("Net    : ", b.Net)
	return nil
}

func (c *Controller) showHistory() {
	limit, _ := c.settings.Limit()
	summaries := c.ledger.Summaries(limit)
	if len(summaries) == 0 {
		c.view.println("\nNo transactions recorded yet.")
		return
	}
	c.view.heading("MONTHLY HISTORY")
	for _, s := range summaries {
		line := s.YearMonth.String() + "  income " + c.view.money(s.TotalIncome) +
			"  expense " + c.view.money(s.TotalExpense) + "  net " + c.view.signedMoney(s.NetBalance)
		if s.LimitExceeded {
			c.view.warning("%s  (over limit)", line)
		} else {
			c.view.println(line)
		}
	}
}

// readLine prints label and returns the next trimmed input line, or io.EOF
// when input is exhausted.
func (c *Controller) readLine(label string) (string, error) {
	c.view.printf("%s", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Controller) askAmount(label string) (core.Money, error) {
	for {
		s, err := c.readLine(label)
		if err != nil {
			return core.Money{}, err
		}
		m, err := core.ParseAmount(s)
		if err == nil {
			return m, nil
		}
		c.view.failure("Amount must be a number greater than zero!")
	}
}

func (c *Controller) askRequired(label, complaint string) (string, error) {
	for {
		s, err := c.readLine(label)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
		c.view.failure("%s", complaint)
	}
}

// askDate accepts YYYY-MM-DD or a blank line for now.
func (c *Controller) askDate() (time.Time, error) {
	for {
		s, err := c.readLine("Date (YYYY-MM-DD, blank for now): ")
		if err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return c.now(), nil
		}
		if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			return d, nil
		}
		c.view.failure("Please enter the date as YYYY-MM-DD!")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
