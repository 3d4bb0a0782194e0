// Package coerce converts a literal lexeme produced by the tokenizer into a
// reflect.Value assignable to a target field's type, following a fixed,
// ordered set of rules: null handling first, then the host's own scalar
// kinds in the order a type switch would naturally try them, with the
// well-known string-encoded types (UUID, decimal, date) checked before
// falling through to plain string.
package coerce

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-recordquery/recordquery/internal/queryerr"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	timeType    = reflect.TypeOf(time.Time{})
)

// Value converts lexeme to a value assignable to target, or to the
// element type of target when target is a pointer (the nullable case).
// null is only legal when target is a pointer type; coercing null against
// a non-pointer target raises NullNotAssignable.
func Value(lexeme string, target reflect.Type) (reflect.Value, error) {
	if lexeme == "null" {
		if target.Kind() != reflect.Ptr {
			return reflect.Value{}, queryerr.NewNullNotAssignable(target.String())
		}
		return reflect.Zero(target), nil
	}

	elem := target
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	v, err := scalar(lexeme, elem)
	if err != nil {
		return reflect.Value{}, err
	}

	if target.Kind() == reflect.Ptr {
		ptr := reflect.New(elem)
		ptr.Elem().Set(v)
		return ptr, nil
	}
	return v, nil
}

// scalar applies the nine ordered conversion rules against a non-pointer
// target kind/type.
func scalar(lexeme string, elem reflect.Type) (reflect.Value, error) {
	switch {
	case elem.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(lexeme)
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, elem.String())
		}
		return reflect.ValueOf(b), nil

	case elem.Kind() >= reflect.Int && elem.Kind() <= reflect.Int64:
		n, err := strconv.ParseInt(lexeme, 10, elem.Bits())
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, elem.String())
		}
		v := reflect.New(elem).Elem()
		v.SetInt(n)
		return v, nil

	case elem.Kind() >= reflect.Uint && elem.Kind() <= reflect.Uintptr:
		n, err := strconv.ParseUint(lexeme, 10, elem.Bits())
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, elem.String())
		}
		v := reflect.New(elem).Elem()
		v.SetUint(n)
		return v, nil

	case elem.Kind() == reflect.Float32 || elem.Kind() == reflect.Float64:
		f, err := strconv.ParseFloat(lexeme, elem.Bits())
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, elem.String())
		}
		v := reflect.New(elem).Elem()
		v.SetFloat(f)
		return v, nil

	case elem == decimalType:
		d, err := decimal.NewFromString(lexeme)
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, "decimal")
		}
		return reflect.ValueOf(d), nil

	case elem == uuidType:
		u, err := uuid.Parse(lexeme)
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, "uuid")
		}
		return reflect.ValueOf(u), nil

	case elem == timeType:
		t, err := parseTime(lexeme)
		if err != nil {
			return reflect.Value{}, queryerr.NewCoerceFailed(lexeme, "date")
		}
		return reflect.ValueOf(t), nil

	case elem.Kind() == reflect.String:
		return reflect.ValueOf(lexeme).Convert(elem), nil

	default:
		return reflect.Value{}, queryerr.NewTypeMismatch(lexeme, "coercible scalar type")
	}
}

// parseTime accepts full RFC3339 timestamps and plain dates, trying
// RFC3339 first; each layout must match the whole lexeme.
func parseTime(lexeme string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, lexeme); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", lexeme)
}
