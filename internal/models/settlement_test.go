// internal/models/settlement_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettlementTransitions(t *testing.T) {
	statuses := []SettlementStatus{
		SettlementStatusDraft,
		SettlementStatusConfirmed,
		SettlementStatusPaid,
		SettlementStatusRejected,
	}

	allowed := map[SettlementStatus][]SettlementStatus{
		SettlementStatusDraft:     {SettlementStatusConfirmed, SettlementStatusRejected},
		SettlementStatusConfirmed: {SettlementStatusPaid},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			s := Settlement{Status: from}

			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}

			assert.Equal(t, want, s.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestSettlementIsActive(t *testing.T) {
	assert.True(t, (&Settlement{Status: SettlementStatusDraft}).IsActive())
	assert.True(t, (&Settlement{Status: SettlementStatusConfirmed}).IsActive())
	assert.False(t, (&Settlement{Status: SettlementStatusPaid}).IsActive())
	assert.False(t, (&Settlement{Status: SettlementStatusRejected}).IsActive())
}
