package domain

import (
	"time"
)

// Journal entry kinds.
const (
	JournalPlaced      = "PLACED"
	JournalFilled      = "FILLED"
	JournalPartialFill = "PARTIAL_FILL"
	JournalCanceled    = "CANCELED"
	JournalResubmitted = "RESUBMITTED"
	JournalRecentered  = "RECENTERED"
)

// JournalEntry is one row of the order activity journal.
// Prices and amounts are stored as strings to keep decimal precision.
type JournalEntry struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Event     string `json:"event" gorm:"index"`
	Symbol    string `json:"symbol" gorm:"index"`
	OrderID   string `json:"order_id"`
	Side      string `json:"side"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
