package core

// Totals are the aggregate figures for one set of transactions.
// Spent and Received are both non-negative; Net is Received minus Spent.
type Totals struct {
	Spent    Money
	Received Money
	Net      Money
}

// ComputeTotals folds a transaction list into Totals.
//
// The amount sign is the source of truth: negative amounts count as spending
// (absolute value), zero or positive amounts count as income. The result is
// independent of input order and an empty list yields zero totals.
func ComputeTotals(txs []Transaction) Totals {
	var spent, received int64
	for _, tx := range txs {
		if tx.Amount.Cents < 0 {
			spent += -tx.Amount.Cents
		} else {
			received += tx.Amount.Cents
		}
	}
	return Totals{
		Spent:    Money{Cents: spent},
		Received: Money{Cents: received},
		Net:      Money{Cents: received - spent},
	}
}
