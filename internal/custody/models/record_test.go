package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

const (
	testAuthority = id.AuthorityID("authority-1")
	testVendor    = id.PartyID("vendor-1")
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestRecord(t *testing.T) *CustodyRecord {
	t.Helper()
	record, err := NewCustodyRecord("item-1", testVendor, "carrier-1", id.CategoryCarrierLand, testAuthority, baseTime)
	require.NoError(t, err)
	return record
}

func TestNewCustodyRecord(t *testing.T) {
	t.Run("logs the genesis handover from the vendor", func(t *testing.T) {
		record := newTestRecord(t)

		require.Equal(t, 1, record.Len())
		genesis := record.LastHandover()
		assert.Equal(t, testVendor, genesis.FromID)
		assert.Equal(t, id.PartyID("carrier-1"), genesis.ToID)
		assert.Equal(t, id.CategoryCarrierLand, genesis.ToCategory)
		assert.Equal(t, baseTime, genesis.Timestamp)
		assert.Empty(t, genesis.TransitConditions)
	})

	t.Run("fixes identity and authority at creation", func(t *testing.T) {
		record := newTestRecord(t)

		assert.Equal(t, id.ItemID("item-1"), record.ItemID())
		assert.Equal(t, testVendor, record.Vendor())
		assert.Equal(t, testAuthority, record.Primary())
	})

	t.Run("rejects an empty item id", func(t *testing.T) {
		_, err := NewCustodyRecord("", testVendor, "carrier-1", id.CategoryCarrierLand, testAuthority, baseTime)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeEmptyIdentifier))
	})

	t.Run("rejects a vendor as first holder", func(t *testing.T) {
		_, err := NewCustodyRecord("item-1", testVendor, "vendor-2", id.CategoryVendor, testAuthority, baseTime)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVendorReturn))
	})

	t.Run("rejects an unrecognized first holder category", func(t *testing.T) {
		_, err := NewCustodyRecord("item-1", testVendor, "party-x", id.Category("warehouse"), testAuthority, baseTime)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})

	t.Run("rejects the not-applicable sentinel as first holder category", func(t *testing.T) {
		_, err := NewCustodyRecord("item-1", testVendor, "party-x", id.CategoryNotApplicable, testAuthority, baseTime)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})
}

func TestLogHandover(t *testing.T) {
	t.Run("appends when initiated by the current holder", func(t *testing.T) {
		record := newTestRecord(t)

		event, err := record.LogHandover(testAuthority, "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, 2, record.Len())
		assert.Equal(t, id.PartyID("carrier-1"), event.FromID)
		assert.Equal(t, id.PartyID("pharmacy-1"), event.ToID)
		assert.Equal(t, id.CategoryPharmacy, event.ToCategory)
		assert.Equal(t, event, record.LastHandover())
	})

	t.Run("rejects a handover not initiated by the current holder", func(t *testing.T) {
		record := newTestRecord(t)

		_, err := record.LogHandover(testAuthority, "carrier-2", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBrokenChain))
		assert.Equal(t, 1, record.Len())
	})

	t.Run("rejects a handover back to a vendor", func(t *testing.T) {
		record := newTestRecord(t)

		_, err := record.LogHandover(testAuthority, "carrier-1", testVendor, id.CategoryVendor, baseTime.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVendorReturn))
		assert.Equal(t, 1, record.Len())
	})

	t.Run("rejects an unrecognized recipient category", func(t *testing.T) {
		record := newTestRecord(t)

		_, err := record.LogHandover(testAuthority, "carrier-1", "party-x", id.Category("distributor"), baseTime.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
		assert.Equal(t, 1, record.Len())
	})

	t.Run("rejects any caller but the primary authority and leaves the log unchanged", func(t *testing.T) {
		record := newTestRecord(t)
		before := record.Handovers()

		_, err := record.LogHandover("authority-2", "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, before, record.Handovers())
	})

	t.Run("chains every leg to the previous recipient", func(t *testing.T) {
		record := newTestRecord(t)

		_, err := record.LogHandover(testAuthority, "carrier-1", "carrier-2", id.CategoryCarrierAir, baseTime.Add(1*time.Hour))
		require.NoError(t, err)
		_, err = record.LogHandover(testAuthority, "carrier-2", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(2*time.Hour))
		require.NoError(t, err)

		log := record.Handovers()
		require.Len(t, log, 3)
		for i := 1; i < len(log); i++ {
			assert.Equal(t, log[i-1].ToID, log[i].FromID)
		}
	})
}

func TestAttachTransitConditions(t *testing.T) {
	setup := func(t *testing.T) *CustodyRecord {
		record := newTestRecord(t)
		_, err := record.LogHandover(testAuthority, "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
		require.NoError(t, err)
		return record
	}

	t.Run("attaches a reading to the exactly matching leg", func(t *testing.T) {
		record := setup(t)

		err := record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, -18.5, id.CategoryCarrierLand)
		require.NoError(t, err)

		genesis, err := record.HandoverAt(0)
		require.NoError(t, err)
		require.Len(t, genesis.TransitConditions, 1)
		assert.Equal(t, -18.5, genesis.TransitConditions[0].Temperature)
		assert.Equal(t, id.CategoryCarrierLand, genesis.TransitConditions[0].CarrierCategory)

		last := record.LastHandover()
		assert.Empty(t, last.TransitConditions)
	})

	t.Run("appends repeated readings in order", func(t *testing.T) {
		record := setup(t)

		require.NoError(t, record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, 2.0, id.CategoryCarrierLand))
		require.NoError(t, record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, 4.5, id.CategoryCarrierLand))

		genesis, err := record.HandoverAt(0)
		require.NoError(t, err)
		require.Len(t, genesis.TransitConditions, 2)
		assert.Equal(t, 2.0, genesis.TransitConditions[0].Temperature)
		assert.Equal(t, 4.5, genesis.TransitConditions[1].Temperature)
		assert.Equal(t, genesis.TransitConditions[1], genesis.LastCondition())
	})

	t.Run("accepts the not-applicable sentinel as carrier category", func(t *testing.T) {
		record := setup(t)

		err := record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, 7.0, id.CategoryNotApplicable)
		require.NoError(t, err)
	})

	t.Run("rejects an unrecognized carrier category", func(t *testing.T) {
		record := setup(t)

		err := record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, 7.0, id.Category("drone"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})

	t.Run("rejects a triple that matches no logged handover", func(t *testing.T) {
		record := setup(t)

		tests := []struct {
			name string
			from id.PartyID
			to   id.PartyID
			when time.Time
		}{
			{"wrong from", "carrier-9", "carrier-1", baseTime},
			{"wrong to", testVendor, "carrier-9", baseTime},
			{"wrong timestamp", testVendor, "carrier-1", baseTime.Add(time.Nanosecond)},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				err := record.AttachTransitConditions(testAuthority, tc.from, tc.to, tc.when, 1.0, id.CategoryCarrierLand)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownHandover))
			})
		}
	})

	t.Run("rejects any caller but the primary authority", func(t *testing.T) {
		record := setup(t)

		err := record.AttachTransitConditions("authority-2", testVendor, "carrier-1", baseTime, 1.0, id.CategoryCarrierLand)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		genesis, err := record.HandoverAt(0)
		require.NoError(t, err)
		assert.Empty(t, genesis.TransitConditions)
	})
}

func TestLogAccess(t *testing.T) {
	record := newTestRecord(t)
	_, err := record.LogHandover(testAuthority, "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
	require.NoError(t, err)

	t.Run("returns events by position, genesis first", func(t *testing.T) {
		genesis, err := record.HandoverAt(0)
		require.NoError(t, err)
		assert.Equal(t, testVendor, genesis.FromID)

		second, err := record.HandoverAt(1)
		require.NoError(t, err)
		assert.Equal(t, id.PartyID("pharmacy-1"), second.ToID)
		assert.Equal(t, second, record.LastHandover())
	})

	t.Run("rejects out-of-range positions", func(t *testing.T) {
		for _, index := range []int{-1, 2, 100} {
			_, err := record.HandoverAt(index)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeIndexOutOfRange))
		}
	})

	t.Run("hands out copies that do not alias internal state", func(t *testing.T) {
		require.NoError(t, record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, 3.0, id.CategoryCarrierLand))

		log := record.Handovers()
		log[0].TransitConditions[0].Temperature = 99.0
		log[0].ToID = "tampered"

		genesis, err := record.HandoverAt(0)
		require.NoError(t, err)
		assert.Equal(t, 3.0, genesis.TransitConditions[0].Temperature)
		assert.Equal(t, id.PartyID("carrier-1"), genesis.ToID)
	})
}

func TestRehydrate(t *testing.T) {
	t.Run("round-trips a record through its persisted parts", func(t *testing.T) {
		record := newTestRecord(t)
		_, err := record.LogHandover(testAuthority, "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, record.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, -20.0, id.CategoryCarrierLand))

		restored, err := Rehydrate(record.ItemID(), record.Vendor(), record.Primary(), record.Handovers())
		require.NoError(t, err)

		assert.Equal(t, record.Handovers(), restored.Handovers())
		assert.Equal(t, record.Primary(), restored.Primary())

		// The rebuilt leg index must still resolve exact-match attachment.
		err = restored.AttachTransitConditions(testAuthority, testVendor, "carrier-1", baseTime, -19.0, id.CategoryCarrierLand)
		require.NoError(t, err)
	})

	t.Run("rejects an empty item id", func(t *testing.T) {
		_, err := Rehydrate("", testVendor, testAuthority, []HandoverEvent{{FromID: testVendor, ToID: "carrier-1"}})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeEmptyIdentifier))
	})

	t.Run("rejects an empty handover log", func(t *testing.T) {
		_, err := Rehydrate("item-1", testVendor, testAuthority, nil)
		require.Error(t, err)
	})
}

func TestClone(t *testing.T) {
	record := newTestRecord(t)
	clone := record.Clone()

	_, err := clone.LogHandover(testAuthority, "carrier-1", "pharmacy-1", id.CategoryPharmacy, baseTime.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, record.Len())
	assert.Equal(t, 2, clone.Len())
}
