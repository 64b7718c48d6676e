// Package response builds the uniform envelope every API reply is wrapped in.
package response

import (
	"reflect"
	"time"
)

// TimestampLayout renders UTC instants with millisecond precision, e.g.
// 2024-01-01T00:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	DefaultSuccessMessage = "Success"
	DefaultFailureMessage = "Error"
)

// Now is the clock used for envelope timestamps. Tests may replace it.
var Now = time.Now

// Envelope is the {success, data, message, timestamp} shape returned by
// every operation.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Build constructs an envelope stamped with the current time. A nil data
// value, typed or untyped, is stored as a plain nil.
func Build(success bool, data any, message string) Envelope {
	return Envelope{
		Success:   success,
		Data:      normalize(data),
		Message:   message,
		Timestamp: Now().UTC().Format(TimestampLayout),
	}
}

// Success wraps data in a successful envelope. The message defaults to
// "Success".
func Success(data any, message ...string) Envelope {
	return Build(true, data, pick(message, DefaultSuccessMessage))
}

// Failure builds a failed envelope with no data. The message defaults to
// "Error".
func Failure(message ...string) Envelope {
	return Build(false, nil, pick(message, DefaultFailureMessage))
}

// FailureWithData builds a failed envelope that carries diagnostic data.
func FailureWithData(message string, data any) Envelope {
	return Build(false, data, message)
}

func pick(message []string, fallback string) string {
	if len(message) == 0 {
		return fallback
	}
	return message[0]
}

func normalize(data any) any {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return data
}
