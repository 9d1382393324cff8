package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue_AtMostOneMember(t *testing.T) {
	b := true
	n := 45.0
	s := "OK"

	_, err := NewValue(&b, &n, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewValue(nil, &n, &s)
	assert.True(t, errors.Is(err, ErrValidation))

	v, err := NewValue(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	v, err = NewValue(nil, &n, nil)
	require.NoError(t, err)
	got, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, 45.0, got)
	_, ok = v.Bool()
	assert.False(t, ok)
}

func TestValue_PartsRoundTrip(t *testing.T) {
	b, n, s := TextValue("oštećenje izolatora").Parts()
	assert.Nil(t, b)
	assert.Nil(t, n)
	require.NotNil(t, s)
	assert.Equal(t, "oštećenje izolatora", *s)

	b, n, s = Value{}.Parts()
	assert.Nil(t, b)
	assert.Nil(t, n)
	assert.Nil(t, s)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "DA", BoolValue(true).String())
	assert.Equal(t, "NE", BoolValue(false).String())
	assert.Equal(t, "45.5", NumberValue(45.5).String())
	assert.Equal(t, "", Value{}.String())
}

func TestParseDataKind(t *testing.T) {
	k, err := ParseDataKind(" numeric ")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, k)

	_, err = ParseDataKind("DATE")
	assert.Error(t, err)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Postrojenje nije pronađeno", Message(NotFound("Postrojenje nije pronađeno")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestNewValue_SingleValueMessage(t *testing.T) {
	b := false
	s := "x"
	_, err := NewValue(&b, nil, &s)
	assert.Equal(t, MsgSingleValue, Message(err))
}
