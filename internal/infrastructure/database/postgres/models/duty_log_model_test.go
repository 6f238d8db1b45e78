package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// The duty-log upsert conflicts on (device_id, external_id); Postgres
// only accepts ON CONFLICT against a unique constraint, so the declared
// index has to be unique or every upsert fails at runtime.
func TestDutyLogUpsertKeyIsUniqueIndex(t *testing.T) {
	parsed, err := schema.Parse(&DutyLogModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var found bool
	for _, idx := range parsed.ParseIndexes() {
		if idx.Name != "idx_duty_logs_external" {
			continue
		}
		found = true
		require.Equal(t, "UNIQUE", idx.Class)
		require.Len(t, idx.Fields, 2)
		require.Equal(t, "DeviceID", idx.Fields[0].Name)
		require.Equal(t, "ExternalID", idx.Fields[1].Name)
	}
	require.True(t, found)
}
