package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a value cannot be normalized to an entity ID.
var ErrInvalidID = errors.New("invalid id")

// ID is the canonical numeric identity shared by every entity.
type ID int64

// IDValue lists the representations an identity may arrive in at the
// service boundary: path segments and query strings, or decoded numbers.
type IDValue interface {
	~string | ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float64
}

// ParseID normalizes v to its canonical numeric form. "1" and 1 both yield ID(1).
// Only positive integral values are accepted.
func ParseID[T IDValue](v T) (ID, error) {
	rv := reflect.ValueOf(v)

	var n int64
	switch rv.Kind() {
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		n = parsed
	case reflect.Int, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidID, u)
		}
		n = int64(u)
	case reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, f)
		}
		n = int64(f)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, n)
	}
	return ID(n), nil
}

// UnmarshalJSON accepts both 7 and "7".
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		parsed ID
		err    error
	)
	switch v := raw.(type) {
	case float64:
		parsed, err = ParseID(v)
	case string:
		parsed, err = ParseID(v)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidID, string(b))
	}
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
