package bitfinex

import (
	"time"
)

const (
	// BaseURLMainnet is the Bitfinex v2 REST host.
	BaseURLMainnet = "https://api.bitfinex.com"
	// WSURLMainnet is the authenticated v2 WebSocket endpoint.
	WSURLMainnet = "wss://api.bitfinex.com/ws/2"

	maxRetries  = 10
	readTimeout = 60 * time.Second

	// FlagPostOnly marks an order as maker-only; the venue cancels it
	// instead of letting it take liquidity.
	FlagPostOnly = 4096

	orderTypeExchangeLimit = "EXCHANGE LIMIT"
)

// submitOrderRequest is the v2 auth/w/order/submit body. Price and
// amount travel as strings; a negative amount means sell.
type submitOrderRequest struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Amount string `json:"amount"`
	Flags  int    `json:"flags,omitempty"`
}

// cancelOrderRequest is the v2 auth/w/order/cancel body.
type cancelOrderRequest struct {
	ID int64 `json:"id"`
}

// cancelOrderMultiRequest is the v2 auth/w/order/cancel/multi body.
type cancelOrderMultiRequest struct {
	ID []int64 `json:"id"`
}

// Bitfinex v2 serializes orders as positional arrays:
// [ID, GID, CID, SYMBOL, MTS_CREATE, MTS_UPDATE, AMOUNT, AMOUNT_ORIG,
//  TYPE, TYPE_PREV, _, _, FLAGS, STATUS, _, _, PRICE, PRICE_AVG, ...]
const (
	orderFieldID        = 0
	orderFieldSymbol    = 3
	orderFieldMTSCreate = 4
	orderFieldAmount    = 6
	orderFieldType      = 8
	orderFieldStatus    = 13
	orderFieldPrice     = 16
	orderFieldLen       = 17
)

// Ticker arrays: [BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE,
// DAILY_CHANGE_RELATIVE, LAST_PRICE, VOLUME, HIGH, LOW]
const (
	tickerFieldBid     = 0
	tickerFieldBidSize = 1
	tickerFieldAsk     = 2
	tickerFieldAskSize = 3
	tickerFieldLast    = 6
	tickerFieldLen     = 10
)

// Notification arrays: [MTS, TYPE, MESSAGE_ID, _, NOTIFY_INFO, CODE,
// STATUS, TEXT]
const (
	notifyFieldType   = 1
	notifyFieldInfo   = 4
	notifyFieldStatus = 6
	notifyFieldText   = 7
	notifyFieldLen    = 8
)
