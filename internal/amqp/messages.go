package amqp

import (
	"encoding/json"
	"time"

	"payplan/internal/core"
)

// ExpensePaidMessage announces a committed Planned→Paid transition. It
// carries ids only; consumers re-read the rows they need.
type ExpensePaidMessage struct {
	UserID        string     `json:"user_id"`
	ExpenseID     int64      `json:"expense_id"`
	TransactionID int64      `json:"transaction_id"`
	Amount        core.Money `json:"amount_cents"`
	Posted        core.Date  `json:"posted"`
	Timestamp     time.Time  `json:"timestamp"`
}

// NewExpensePaidMessage stamps the message with the current time.
func NewExpensePaidMessage(userID string, expenseID, transactionID int64, amount core.Money, posted core.Date) *ExpensePaidMessage {
	return &ExpensePaidMessage{
		UserID:        userID,
		ExpenseID:     expenseID,
		TransactionID: transactionID,
		Amount:        amount,
		Posted:        posted,
		Timestamp:     time.Now(),
	}
}

func (m *ExpensePaidMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpensePaidMessageFromJSON decodes a message published by ToJSON.
func ExpensePaidMessageFromJSON(data []byte) (*ExpensePaidMessage, error) {
	var msg ExpensePaidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
