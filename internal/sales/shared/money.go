package shared

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an already rounded amount with its ISO currency code,
// e.g. "USD 1,234.50". Unknown codes fall back to the raw code.
func FormatMoney(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	if code == "" {
		return printer.Sprintf("%.2f", amount)
	}
	return code + " " + printer.Sprintf("%.2f", amount)
}
