package coerce

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceBool(t *testing.T) {
	v, err := Value("true", reflect.TypeOf(false))
	require.NoError(t, err)
	assert.Equal(t, true, v.Bool())
}

func TestCoerceInt(t *testing.T) {
	v, err := Value("42", reflect.TypeOf(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())
}

func TestCoerceFloat(t *testing.T) {
	v, err := Value("3.5", reflect.TypeOf(float64(0)))
	require.NoError(t, err)
	assert.Equal(t, 3.5, v.Float())
}

func TestCoerceDecimal(t *testing.T) {
	v, err := Value("19.99", reflect.TypeOf(decimal.Decimal{}))
	require.NoError(t, err)
	assert.True(t, v.Interface().(decimal.Decimal).Equal(decimal.RequireFromString("19.99")))
}

func TestCoerceUUID(t *testing.T) {
	id := uuid.New()
	v, err := Value(id.String(), reflect.TypeOf(uuid.UUID{}))
	require.NoError(t, err)
	assert.Equal(t, id, v.Interface().(uuid.UUID))
}

func TestCoerceDate(t *testing.T) {
	v, err := Value("2024-01-15", reflect.TypeOf(time.Time{}))
	require.NoError(t, err)
	got := v.Interface().(time.Time)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
}

func TestCoerceString(t *testing.T) {
	v, err := Value("hello", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String())
}

func TestCoerceNullAgainstPointerTargetYieldsZero(t *testing.T) {
	v, err := Value("null", reflect.TypeOf((*string)(nil)))
	require.NoError(t, err)
	assert.True(t, v.IsNil())
}

func TestCoerceNullAgainstNonPointerFails(t *testing.T) {
	_, err := Value("null", reflect.TypeOf(""))
	assert.Error(t, err)
}

func TestCoercePointerTargetWrapsValue(t *testing.T) {
	v, err := Value("42", reflect.TypeOf((*int)(nil)))
	require.NoError(t, err)
	require.False(t, v.IsNil())
	assert.Equal(t, 42, *v.Interface().(*int))
}

func TestCoerceInvalidIntFails(t *testing.T) {
	_, err := Value("not-a-number", reflect.TypeOf(0))
	assert.Error(t, err)
}
