package cache

import "github.com/sheikh-saqib/ledger-transaction-cache/internal/models"

// Aggregate merges transactions sharing an identity key into the first one
// seen for that key. The result keeps first-seen key order.
//
// The first record of every key is reused as the group seed and mutated in
// place; callers must not hold on to the input.
func Aggregate(txs []*models.CachedTransaction) []*models.CachedTransaction {
	if len(txs) == 0 {
		return nil
	}

	seeds := make(map[models.IdentityKey]*models.CachedTransaction, len(txs))
	out := make([]*models.CachedTransaction, 0, len(txs))

	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if seed, ok := seeds[tx.Key()]; ok {
			seed.Merge(tx)
			continue
		}
		if tx.MergeCount < 1 {
			tx.MergeCount = 1
		}
		seeds[tx.Key()] = tx
		out = append(out, tx)
	}
	return out
}
