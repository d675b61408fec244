package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationLevel_AtLeast(t *testing.T) {
	levels := []ConfirmationLevel{LevelUnobserved, LevelProcessed, LevelConfirmed, LevelFinalized}

	for i, level := range levels {
		for j, target := range levels {
			assert.Equal(t, i >= j, level.AtLeast(target), "%q at least %q", level, target)
		}
	}
}

func TestVolumeUSD_SumsOutgoingFromFeePayer(t *testing.T) {
	detail := &TransactionDetail{
		FeePayer: "wallet-a",
		Transfers: []Transfer{
			{From: "wallet-a", To: "pool", USDValue: 100},
			{From: "pool", To: "wallet-a", USDValue: 99},
			{From: "wallet-a", To: "fee-account", USDValue: 1},
			{From: "other", To: "pool", USDValue: 500},
		},
	}
	assert.Equal(t, float64(101), detail.VolumeUSD())
}

func TestVolumeUSD_NoTransfers(t *testing.T) {
	detail := &TransactionDetail{FeePayer: "wallet-a"}
	assert.Zero(t, detail.VolumeUSD())
}
