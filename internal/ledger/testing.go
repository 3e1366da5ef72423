package ledger

// SeedBalance is a test helper that sets the balance for a user's wallet when
// using the in-memory ledger. The wallet is created if it does not exist yet.
func SeedBalance(l Ledger, userID string, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.getOrCreateLocked(userID)
		mem.wallets[userID].Balance = amount
	}
}
