package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMapping_Validate(t *testing.T) {
	t.Run("default mapping is valid", func(t *testing.T) {
		require.NoError(t, DefaultFieldMapping().Validate())
	})

	t.Run("unknown field", func(t *testing.T) {
		m := FieldMapping{FieldAmount: "Betrag", FieldIBAN: "IBAN", "colour": "x"}
		assert.Error(t, m.Validate())
	})

	t.Run("missing iban", func(t *testing.T) {
		m := FieldMapping{FieldAmount: "Betrag", FieldIBAN: "  "}
		assert.Error(t, m.Validate())
	})
}

func TestFieldMapping_IsEmpty(t *testing.T) {
	assert.True(t, FieldMapping(nil).IsEmpty())
	assert.True(t, FieldMapping{FieldAmount: " "}.IsEmpty())
	assert.False(t, FieldMapping{FieldAmount: "Betrag"}.IsEmpty())
}

func TestConfig_EffectiveMapping(t *testing.T) {
	fallback := DefaultFieldMapping()

	var nilCfg *Config
	assert.Equal(t, fallback, nilCfg.EffectiveMapping(fallback))

	cfg, err := NewConfig(nil, "Acme", nil)
	require.NoError(t, err)
	assert.Equal(t, fallback, cfg.EffectiveMapping(fallback))

	custom := FieldMapping{FieldAmount: "Betrag", FieldIBAN: "Konto"}
	cfg, err = NewConfig(nil, "Acme", custom)
	require.NoError(t, err)
	assert.Equal(t, custom, cfg.EffectiveMapping(fallback))
}

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(nil, " ", nil)
	assert.Error(t, err)

	_, err = NewConfig(nil, "Acme", FieldMapping{FieldAmount: "a"})
	assert.Error(t, err)
}

func TestConfig_SetDefaultCurrency(t *testing.T) {
	cfg, err := NewConfig(nil, "Acme", nil)
	require.NoError(t, err)

	require.NoError(t, cfg.SetDefaultCurrency(" eur "))
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Error(t, cfg.SetDefaultCurrency("EURO"))
}
