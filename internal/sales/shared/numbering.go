// Package shared holds helpers used by every sales document kind.
package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	InvoiceNumberTemplate  = "INV-{YYYY}{MM}-{SEQ5}"
	ProposalNumberTemplate = "PRP-{YYYY}{MM}-{SEQ5}"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// NumberPeriod is the sequence bucket a document issued at t belongs to.
// Sequences restart every month.
func NumberPeriod(t time.Time) string {
	return t.Format("200601")
}

// FormatDocNumber expands a numbering template for a document issued at
// issuedAt with sequence seq. Supported tokens are {YYYY}, {YY}, {MM}, {DD},
// {SEQ} and {SEQn} for a zero padded sequence of width n.
func FormatDocNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("sales/shared: number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("sales/shared: invalid sequence %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("sales/shared: unresolved token in %q", out)
	}
	return out, nil
}
