package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

func strPtr(s string) *string { return &s }

var boiler = domain.CreateAssetInput{
	AssetName:  "Boiler A",
	Type:       "HVAC",
	Regulation: "Gas Safe",
	Location:   "Plant Room",
}

func TestCreateAssetOffline(t *testing.T) {
	h := newHarness(t, false)

	result, err := NewAssetUsecase(h.deps).CreateAsset(context.Background(), boiler)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Offline)
	assert.NotEmpty(t, result.ID)
	assert.Empty(t, h.gateway.Calls())

	records := h.pending(t)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TagAssets, records[0].Table)

	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(records[0].Payload, &row))
	assert.Equal(t, map[string]interface{}{
		"id":               result.ID,
		"asset_name":       "Boiler A",
		"type":             "HVAC",
		"regulation":       "Gas Safe",
		"location":         "Plant Room",
		"status":           "Non-Compliant",
		"next_service_due": "2024-03-15",
	}, row)
	assert.Equal(t, []string{domain.EventRecordQueued}, h.publisher.Events())
}

func TestCreateAssetOnline(t *testing.T) {
	h := newHarness(t, true)

	result, err := NewAssetUsecase(h.deps).CreateAsset(context.Background(), boiler)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Offline)
	assert.Empty(t, h.pending(t))

	calls := h.gateway.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "insert", calls[0].Op)
	assert.Equal(t, domain.TableAssets, calls[0].Table)
	assert.Equal(t, "Non-Compliant", calls[0].Rows[0]["status"])
	assert.Equal(t, "2024-03-15", calls[0].Rows[0]["next_service_due"])
}

func TestCreateAssetValidation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.CreateAssetInput
		want  string
	}{
		{"missing name", domain.CreateAssetInput{Type: "HVAC", Regulation: "Gas Safe", Location: "Plant Room"}, "Asset name is required."},
		{"blank after sanitising", domain.CreateAssetInput{AssetName: " <b></b> ", Type: "HVAC", Regulation: "Gas Safe", Location: "Plant Room"}, "Asset name is required."},
		{"missing location", domain.CreateAssetInput{AssetName: "Boiler A", Type: "HVAC", Regulation: "Gas Safe"}, "Location is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, connected := range []bool{true, false} {
				h := newHarness(t, connected)
				result, err := NewAssetUsecase(h.deps).CreateAsset(context.Background(), tt.input)
				require.NoError(t, err)
				assert.False(t, result.Success)
				assert.Equal(t, tt.want, result.Error)
				assert.Empty(t, h.gateway.Calls())
				assert.Empty(t, h.pending(t))
			}
		})
	}
}

func TestCreateAssetRemoteFailure(t *testing.T) {
	h := newHarness(t, true)
	h.gateway.setFail(func(gatewayCall) error { return errors.New("permission denied") })

	result, err := NewAssetUsecase(h.deps).CreateAsset(context.Background(), boiler)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Empty(t, h.pending(t))
}

func TestCreateAssetPersistenceFailure(t *testing.T) {
	h := newHarness(t, false)
	h.queue.failEnqueue = true

	result, err := NewAssetUsecase(h.deps).CreateAsset(context.Background(), boiler)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestUpdateAsset(t *testing.T) {
	t.Run("offline queues the patch with its id", func(t *testing.T) {
		h := newHarness(t, false)

		result, err := NewAssetUsecase(h.deps).UpdateAsset(context.Background(), domain.UpdateAssetInput{
			ID:     "a1",
			Status: strPtr(domain.AssetStatusOverdue),
		})
		require.NoError(t, err)
		assert.True(t, result.Offline)

		records := h.pending(t)
		require.Len(t, records, 1)
		assert.Equal(t, domain.TagAssetsUpdates, records[0].Table)
		assert.JSONEq(t, `{"id":"a1","status":"Overdue"}`, string(records[0].Payload))
	})

	t.Run("online sends only the set fields", func(t *testing.T) {
		h := newHarness(t, true)

		_, err := NewAssetUsecase(h.deps).UpdateAsset(context.Background(), domain.UpdateAssetInput{
			ID:       "a1",
			Location: strPtr("  Roof  "),
		})
		require.NoError(t, err)
		assert.Equal(t, []gatewayCall{
			{Op: "update", Table: "assets", Patch: domain.Row{"location": "Roof"}, Filter: domain.ByID("a1")},
		}, h.gateway.Calls())
	})

	t.Run("nothing to update", func(t *testing.T) {
		h := newHarness(t, true)
		result, err := NewAssetUsecase(h.deps).UpdateAsset(context.Background(), domain.UpdateAssetInput{ID: "a1"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, h.gateway.Calls())
	})

	t.Run("blank text fields are rejected before any write", func(t *testing.T) {
		tests := []struct {
			name  string
			input domain.UpdateAssetInput
			want  string
		}{
			{"asset name", domain.UpdateAssetInput{ID: "a1", AssetName: strPtr("   ")}, "Asset name is required."},
			{"type", domain.UpdateAssetInput{ID: "a1", Type: strPtr("\n\t")}, "Type is required."},
			{"regulation", domain.UpdateAssetInput{ID: "a1", Regulation: strPtr("<b></b>")}, "Regulation is required."},
			{"location", domain.UpdateAssetInput{ID: "a1", Location: strPtr("")}, "Location is required."},
		}
		for _, tt := range tests {
			for _, connected := range []bool{true, false} {
				h := newHarness(t, connected)
				result, err := NewAssetUsecase(h.deps).UpdateAsset(context.Background(), tt.input)
				require.NoError(t, err, tt.name)
				assert.False(t, result.Success, tt.name)
				assert.Equal(t, tt.want, result.Error, tt.name)
				assert.Empty(t, h.gateway.Calls(), tt.name)
				assert.Empty(t, h.pending(t), tt.name)
			}
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		h := newHarness(t, true)
		result, err := NewAssetUsecase(h.deps).UpdateAsset(context.Background(), domain.UpdateAssetInput{
			ID:     "a1",
			Status: strPtr("Fine"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Status is not a valid value.", result.Error)
	})
}

func TestDeleteAssetOfflineQueuesOnlyID(t *testing.T) {
	h := newHarness(t, false)

	result, err := NewAssetUsecase(h.deps).DeleteAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, result.Offline)

	records := h.pending(t)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TagAssetsDeletions, records[0].Table)
	assert.JSONEq(t, `{"id":"a1"}`, string(records[0].Payload))

	h.oracle.connected.Store(true)
	_, err = h.sync.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []gatewayCall{
		{Op: "delete", Table: "assets", Filter: domain.ByID("a1")},
	}, h.gateway.Calls())
}

func TestDeleteAssetRequiresID(t *testing.T) {
	h := newHarness(t, true)
	result, err := NewAssetUsecase(h.deps).DeleteAsset(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, h.gateway.Calls())
}
