package payments

import (
	"fmt"
	"strconv"
)

// CallbackEnvelope is the outer shape of the provider's asynchronous result
// notification: {Body:{stkCallback:{...}}}.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

// CallbackBody wraps the stkCallback object.
type CallbackBody struct {
	STKCallback STKCallback `json:"stkCallback"`
}

// STKCallback carries the final outcome of one push request. ResultCode 0
// means the customer completed the payment; anything else is a failure
// (cancelled, timed out, insufficient M-Pesa balance, ...).
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata holds the loosely structured name/value items delivered on
// successful payments.
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is a single metadata entry. Value is a string or a number
// depending on the item.
type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// StringValue looks up a metadata item by name, rendering numeric values as
// their decimal text.
func (m *CallbackMetadata) StringValue(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, item := range m.Item {
		if item.Name != name {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return "", false
	}
	return "", false
}

// ReceiptNumber extracts the provider receipt from the callback metadata.
func (c STKCallback) ReceiptNumber() (string, bool) {
	return c.CallbackMetadata.StringValue("MpesaReceiptNumber")
}

// Validate rejects payloads that cannot be processed: a missing correlation
// id, or a success result without the receipt item the credit description
// needs. Failures are ErrBadCallback so the boundary can report a validation
// error while still acknowledging the provider.
func (e CallbackEnvelope) Validate() error {
	cb := e.Body.STKCallback
	if cb.CheckoutRequestID == "" {
		return fmt.Errorf("%w: missing CheckoutRequestID", ErrBadCallback)
	}
	if cb.ResultCode == 0 {
		if _, ok := cb.ReceiptNumber(); !ok {
			return fmt.Errorf("%w: success result without MpesaReceiptNumber", ErrBadCallback)
		}
	}
	return nil
}
