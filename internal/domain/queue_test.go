package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		tag  Tag
		want Intent
	}{
		{TagWorkOrderResolutions, Intent{Kind: IntentResolution}},
		{TagStorageUploads, Intent{Kind: IntentUpload}},
		{TagAssetsDeletions, Intent{Kind: IntentDelete, Table: "assets"}},
		{TagAssetsUpdates, Intent{Kind: IntentUpdate, Table: "assets"}},
		{TagProfilesUpdates, Intent{Kind: IntentUpdate, Table: "profiles"}},
		{TagSiteSettings, Intent{Kind: IntentUpdate, Table: "site_settings"}},
		{TagAssets, Intent{Kind: IntentInsert, Table: "assets"}},
		{TagIncidents, Intent{Kind: IntentInsert, Table: "incidents"}},
		{TagAccidents, Intent{Kind: IntentInsert, Table: "accidents"}},
		{TagMaintenanceLogs, Intent{Kind: IntentInsert, Table: "maintenance_logs"}},
		{Tag("work_orders_deletions"), Intent{Kind: IntentDelete, Table: "work_orders"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tag))
		})
	}
}

func TestResolutionPayloadTargetTable(t *testing.T) {
	asset := ResolutionPayload{IsAssetTask: true}
	order := ResolutionPayload{}

	assert.Equal(t, TableAssets, asset.TargetTable())
	assert.Equal(t, TableWorkOrders, order.TargetTable())
}
