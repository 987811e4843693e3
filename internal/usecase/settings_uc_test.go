package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

var settingsInput = domain.UpdateSiteSettingsInput{
	ID:                "s1",
	SiteName:          "Depot North",
	ResponsiblePerson: "A. Patel",
	EmergencyContact:  "+44 20 7946 0000",
	ReminderDays:      14,
}

func TestUpdateSiteSettingsOffline(t *testing.T) {
	h := newHarness(t, false)

	result, err := NewSettingsUsecase(h.deps).UpdateSiteSettings(context.Background(), settingsInput)
	require.NoError(t, err)
	assert.True(t, result.Offline)

	records := h.pending(t)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TagSiteSettings, records[0].Table)
	assert.JSONEq(t, `{
		"id":"s1","site_name":"Depot North","responsible_person":"A. Patel",
		"emergency_contact":"+44 20 7946 0000","reminder_days":14}`, string(records[0].Payload))
}

func TestUpdateSiteSettingsReminderRange(t *testing.T) {
	h := newHarness(t, true)
	input := settingsInput
	input.ReminderDays = 0

	result, err := NewSettingsUsecase(h.deps).UpdateSiteSettings(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Reminder days must be at least 1.", result.Error)
	assert.Empty(t, h.gateway.Calls())
}
