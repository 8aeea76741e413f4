package core

// Totals summarizes one paycheck's plan.
type Totals struct {
	Income    Money `json:"income_cents"`
	Expenses  Money `json:"expenses_cents"`
	Vaults    Money `json:"vaults_cents"`
	Remaining Money `json:"remaining_cents"`
}

// VaultBalance is the sum of a vault's activity ledger.
type VaultBalance struct {
	VaultID int64 `json:"vault_id"`
	Balance Money `json:"balance_cents"`
	Entries int   `json:"entries"`
}
