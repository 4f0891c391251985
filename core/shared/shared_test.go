package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"AdminCap":   "admin_cap",
		"NFTVault":   "nft_vault",
		"Counter":    "counter",
		"already_ok": "already_ok",
		"TreasuryV2": "treasury_v2",
		"ID":         "id",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnake(in), in)
	}
}

func TestToPascal(t *testing.T) {
	assert.Equal(t, "SetValue", ToPascal("set_value"))
	assert.Equal(t, "SetValue", ToPascal("setValue"))
	assert.Equal(t, "Pause", ToPascal("pause"))
	assert.Equal(t, "WithdrawFees2", ToPascal("withdraw__fees_2"))
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "Vault", ToTitle("vault"))
	assert.Equal(t, "", ToTitle(""))
}
