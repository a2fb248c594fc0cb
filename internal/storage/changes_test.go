package storage

import (
	"testing"

	"eve.evalgo.org/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/hostjobs/models"
)

func TestDecodeHostChange(t *testing.T) {
	tests := []struct {
		name     string
		change   db.Change
		wantType ChangeType
		wantErr  bool
	}{
		{
			name: "created",
			change: db.Change{
				ID:  "host:1",
				Seq: "1-abc",
				Doc: []byte(`{"@id":"host:1","_rev":"1-x","name":"a","hostState":"managed"}`),
			},
			wantType: ChangeTypeCreated,
		},
		{
			name: "updated",
			change: db.Change{
				ID:  "host:1",
				Seq: "2-abc",
				Doc: []byte(`{"@id":"host:1","_rev":"3-x","name":"a","hostState":"working"}`),
			},
			wantType: ChangeTypeUpdated,
		},
		{
			name:     "deleted",
			change:   db.Change{ID: "host:1", Seq: "3-abc", Deleted: true},
			wantType: ChangeTypeDeleted,
		},
		{
			name: "bad state",
			change: db.Change{
				ID:  "host:1",
				Doc: []byte(`{"@id":"host:1","hostState":"melted"}`),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeHostChange(tt.change)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, "host:1", got.ID)
			assert.Equal(t, tt.change.Seq, got.Sequence)
			if tt.wantType == ChangeTypeDeleted {
				assert.Nil(t, got.Host)
			} else {
				assert.Equal(t, "host:1", got.Host.ID)
			}
		})
	}
}

func TestHostChange_String(t *testing.T) {
	c := HostChange{Type: ChangeTypeUpdated, Host: &models.Host{ID: "host:1", Name: "a", State: models.HostStateWorking}}
	assert.Equal(t, "[updated] Host: a (host:1) - State: working", c.String())

	d := HostChange{Type: ChangeTypeDeleted, ID: "host:1"}
	assert.Equal(t, "[deleted] Host deleted: host:1", d.String())
}
