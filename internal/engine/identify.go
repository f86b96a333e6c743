package engine

import (
	"encoding/json"

	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
)

// The venue's order-submission response is not a stable shape: it may be
// an on-req notification wrapping a list of orders, a notify-info
// payload, a direct order object, or a bare list. Resolution runs a
// fixed sequence of pure matchers; the first hit wins and anything else
// degrades to a placeholder identity so the order is tracked either way.

type shapeMatcher func(raw json.RawMessage) (int64, bool)

var identityMatchers = []shapeMatcher{
	matchNotificationData,
	matchNotifyInfo,
	matchDirectID,
	matchRawList,
}

// ResolveIdentity extracts the venue order id from a submission
// response, falling back to a deterministic placeholder derived from
// the order itself.
func ResolveIdentity(raw json.RawMessage, side domain.Side, price, amount decimal.Decimal) domain.OrderIdentity {
	for _, match := range identityMatchers {
		if id, ok := match(raw); ok {
			return domain.ConfirmedID(id)
		}
	}
	return domain.PlaceholderID(side, price, amount)
}

// matchNotificationData handles the wrapped on-req notification:
// [MTS, TYPE, MESSAGE_ID, _, DATA, ...] where DATA is either a list of
// order arrays or a single order array.
func matchNotificationData(raw json.RawMessage) (int64, bool) {
	fields, ok := asNotification(raw)
	if !ok {
		return 0, false
	}

	var data []json.RawMessage
	if json.Unmarshal(fields[notifyInfoIndex], &data) != nil || len(data) == 0 {
		return 0, false
	}

	// List of order arrays: take the first order's id.
	var inner []json.RawMessage
	if json.Unmarshal(data[0], &inner) == nil && len(inner) > 0 {
		return asID(inner[0])
	}

	// Single order array: the first element is the id.
	return asID(data[0])
}

// matchNotifyInfo handles an object payload exposing notify_info.
func matchNotifyInfo(raw json.RawMessage) (int64, bool) {
	var obj struct {
		NotifyInfo []json.RawMessage `json:"notify_info"`
	}
	if json.Unmarshal(raw, &obj) != nil || len(obj.NotifyInfo) == 0 {
		return 0, false
	}
	return asID(obj.NotifyInfo[0])
}

// matchDirectID handles a direct order object with an id field.
func matchDirectID(raw json.RawMessage) (int64, bool) {
	var obj struct {
		ID *int64 `json:"id"`
	}
	if json.Unmarshal(raw, &obj) != nil || obj.ID == nil {
		return 0, false
	}
	return *obj.ID, true
}

// matchRawList handles a bare list response: the first element is the
// id, an order object, or an order array. Notification arrays are
// excluded here; their timestamp must not be mistaken for an id.
func matchRawList(raw json.RawMessage) (int64, bool) {
	var fields []json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || len(fields) == 0 {
		return 0, false
	}

	if _, isNotification := asNotification(raw); isNotification {
		return 0, false
	}

	if id, ok := asID(fields[0]); ok {
		return id, true
	}
	if id, ok := matchDirectID(fields[0]); ok {
		return id, true
	}
	var inner []json.RawMessage
	if json.Unmarshal(fields[0], &inner) == nil && len(inner) > 0 {
		return asID(inner[0])
	}
	return 0, false
}

const (
	notifyTypeIndex = 1
	notifyInfoIndex = 4
)

// asNotification reports whether raw is a notification array (second
// element is a string type tag) and returns its fields.
func asNotification(raw json.RawMessage) ([]json.RawMessage, bool) {
	var fields []json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || len(fields) <= notifyInfoIndex {
		return nil, false
	}
	var typeTag string
	if json.Unmarshal(fields[notifyTypeIndex], &typeTag) != nil {
		return nil, false
	}
	return fields, true
}

func asID(raw json.RawMessage) (int64, bool) {
	var id int64
	if json.Unmarshal(raw, &id) != nil || id == 0 {
		return 0, false
	}
	return id, true
}
