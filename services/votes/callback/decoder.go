// Package callback decodes Daraja STK callback deliveries.
//
// Deliveries are untrusted. Field names are matched without regard to case,
// metadata items are recognised by substring, and numbers may arrive as JSON
// numbers or strings.
package callback

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Shape tells which payload layout a delivery used
type Shape string

const (
	ShapeSTK     Shape = "stk"
	ShapeUnknown Shape = "unknown"
)

// ErrNotJSON is returned when the body is not a JSON object
var ErrNotJSON = errors.New("callback body is not a JSON object")

// Metadata holds the recognised CallbackMetadata items
type Metadata struct {
	Amount          *int64
	Receipt         *string
	Phone           string
	TransactionDate string
}

// Envelope is a decoded callback
type Envelope struct {
	Shape             Shape
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	HasResultCode     bool
	ResultDesc        string
	Metadata          Metadata
	Raw               json.RawMessage
}

// Decode parses body into an Envelope. A JSON object without an stkCallback
// section decodes to ShapeUnknown without error.
func Decode(body []byte) (*Envelope, error) {
	root, ok := asObject(decodeValue(body))
	if !ok {
		return nil, ErrNotJSON
	}

	env := &Envelope{Shape: ShapeUnknown, Raw: compact(body)}

	stk, ok := asObject(lookup(root, "stkcallback"))
	if !ok {
		if inner, found := asObject(lookup(root, "body")); found {
			stk, ok = asObject(lookup(inner, "stkcallback"))
		}
	}
	if !ok {
		return env, nil
	}

	env.Shape = ShapeSTK
	env.MerchantRequestID = asString(lookup(stk, "merchantrequestid"))
	env.CheckoutRequestID = asString(lookup(stk, "checkoutrequestid"))
	env.ResultDesc = asString(lookup(stk, "resultdesc"))
	if code, ok := asInt(lookup(stk, "resultcode")); ok {
		env.ResultCode = int(code)
		env.HasResultCode = true
	}

	if meta, ok := asObject(lookup(stk, "callbackmetadata")); ok {
		env.Metadata = decodeMetadata(lookup(meta, "item"))
	}

	return env, nil
}

func decodeMetadata(items interface{}) Metadata {
	var md Metadata

	var list []interface{}
	switch v := items.(type) {
	case []interface{}:
		list = v
	case map[string]interface{}:
		list = []interface{}{v}
	}

	for _, raw := range list {
		item, ok := asObject(raw)
		if !ok {
			continue
		}
		name := strings.ToLower(asString(lookup(item, "name")))
		value := lookup(item, "value")

		switch {
		case strings.Contains(name, "receipt"):
			if s := asString(value); s != "" {
				md.Receipt = &s
			}
		case strings.Contains(name, "amount"):
			if n, ok := asInt(value); ok {
				md.Amount = &n
			}
		case strings.Contains(name, "phone"):
			md.Phone = asString(value)
		case strings.Contains(name, "date"):
			md.TransactionDate = asString(value)
		}
	}

	return md
}

func decodeValue(body []byte) interface{} {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func compact(body []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return json.RawMessage(body)
	}
	return buf.Bytes()
}

// lookup finds a key ignoring case
func lookup(obj map[string]interface{}, key string) interface{} {
	if v, ok := obj[key]; ok {
		return v
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// asInt accepts integers, decimals such as 1.00 and numeric strings
func asInt(v interface{}) (int64, bool) {
	s := asString(v)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}
