// Package wallet is the HTTP-facing surface of the wallet ledger. The actual
// balance and transaction semantics live in internal/ledger.
package wallet
