package blockchain

import (
	"fmt"
	"strings"
	"unicode"
)

// Transactions is the opaque, ordered payload of a block. Entries are never
// interpreted, only hashed through String.
type Transactions []string

// String renders the payload as a quoted list, e.g. ['Alice sent 1 BTC to Bob'].
// The form is part of the block hash, so it must stay stable.
func (txs Transactions) String() string {
	quoted := make([]string, 0, len(txs))
	for _, tx := range txs {
		quoted = append(quoted, quote(tx))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (txs Transactions) clone() Transactions {
	if txs == nil {
		return Transactions{}
	}
	out := make(Transactions, len(txs))
	copy(out, txs)
	return out
}

// ParseTransactions splits a comma separated line into trimmed, non-empty entries.
func ParseTransactions(line string) Transactions {
	var txs Transactions
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			txs = append(txs, part)
		}
	}
	return txs
}

// quote single-quotes s unless it contains a single quote and no double quote.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q || r == '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(q)
	return b.String()
}
