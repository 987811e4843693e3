package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

func TestBuildInsert(t *testing.T) {
	query, args, err := buildInsert("assets", domain.Row{
		"id":         "a1",
		"asset_name": "Boiler A",
		"status":     "Non-Compliant",
		"meta":       map[string]interface{}{"floor": 2},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "assets" ("asset_name", "id", "meta", "status") VALUES (:asset_name, :id, :meta, :status)`,
		query)
	assert.Equal(t, "Boiler A", args["asset_name"])
	assert.Equal(t, `{"floor":2}`, args["meta"])
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := buildUpdate("profiles", domain.Row{"specialism": "Electrical"}, domain.ByID("u1"))
	require.NoError(t, err)

	assert.Equal(t, `UPDATE "profiles" SET "specialism" = :set_specialism WHERE "id" = :where_id`, query)
	assert.Equal(t, map[string]interface{}{"set_specialism": "Electrical", "where_id": "u1"}, args)
}

func TestBuildUpdatePatchMayContainFilterColumn(t *testing.T) {
	query, args, err := buildUpdate("assets", domain.Row{"id": "a2"}, domain.ByID("a1"))
	require.NoError(t, err)

	assert.Equal(t, `UPDATE "assets" SET "id" = :set_id WHERE "id" = :where_id`, query)
	assert.Equal(t, "a2", args["set_id"])
	assert.Equal(t, "a1", args["where_id"])
}

func TestBuildDelete(t *testing.T) {
	query, args, err := buildDelete("assets", domain.ByID("a1"))
	require.NoError(t, err)

	assert.Equal(t, `DELETE FROM "assets" WHERE "id" = :where_id`, query)
	assert.Equal(t, map[string]interface{}{"where_id": "a1"}, args)
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{"empty row", func() error { _, _, err := buildInsert("assets", domain.Row{}); return err }},
		{"injected column", func() error {
			_, _, err := buildInsert("assets", domain.Row{`name"; DROP TABLE assets; --`: "x"})
			return err
		}},
		{"empty patch", func() error { _, _, err := buildUpdate("assets", domain.Row{}, domain.ByID("a1")); return err }},
		{"bad filter column", func() error {
			_, _, err := buildDelete("assets", domain.Filter{Column: "Id Or 1=1", Value: "a1"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.run())
		})
	}
}

func TestGatewayRejectsUnknownTable(t *testing.T) {
	gw := NewRowGateway(nil)
	ctx := context.Background()

	assert.Error(t, gw.Insert(ctx, "users", []domain.Row{{"id": "x"}}))
	assert.Error(t, gw.Update(ctx, "assets;", domain.Row{"a": 1}, domain.ByID("x")))
	assert.Error(t, gw.Delete(ctx, "pg_catalog", domain.ByID("x")))
}
