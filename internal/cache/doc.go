// Package cache buffers small transfers, merges the ones that share a source,
// destination and message, and hands the merged set to the ledger once per
// flush interval.
//
// Delivery is at-most-once per flush cycle: a merged record whose accounts
// cannot be resolved, or whose transfer fails, is logged and discarded.
package cache
