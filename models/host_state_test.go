package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllHostStates_Order(t *testing.T) {
	want := []string{
		"undeployed",
		"unconfigured",
		"packages_installed",
		"managed",
		"monitored",
		"working",
		"removed",
	}

	states := AllHostStates()
	require.Len(t, states, len(want))
	for i, s := range states {
		assert.Equal(t, want[i], s.String())
		assert.True(t, s.Valid())
		if i > 0 {
			assert.Less(t, int(states[i-1]), int(s), "states must be declared in lifecycle order")
		}
	}
}

func TestHostState_ZeroValueIsNotAState(t *testing.T) {
	var s HostState
	assert.Equal(t, HostStateUnknown, s)
	assert.False(t, s.Valid())
	assert.False(t, HostState(42).Valid())
	assert.Equal(t, "HostState(42)", HostState(42).String())
}

func TestParseHostState(t *testing.T) {
	tests := []struct {
		input   string
		want    HostState
		wantErr bool
	}{
		{"undeployed", HostStateUndeployed, false},
		{"packages_installed", HostStatePackagesInstalled, false},
		{"PackagesInstalled", HostStatePackagesInstalled, false},
		{"packages-installed", HostStatePackagesInstalled, false},
		{" WORKING ", HostStateWorking, false},
		{"Removed", HostStateRemoved, false},
		{"", HostStateUnknown, true},
		{"rebooting", HostStateUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHostState(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownHostState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostState_JSON(t *testing.T) {
	data, err := json.Marshal(HostStateMonitored)
	require.NoError(t, err)
	assert.Equal(t, `"monitored"`, string(data))

	var s HostState
	require.NoError(t, json.Unmarshal([]byte(`"managed"`), &s))
	assert.Equal(t, HostStateManaged, s)

	err = json.Unmarshal([]byte(`"exploded"`), &s)
	assert.ErrorIs(t, err, ErrUnknownHostState)

	_, err = json.Marshal(HostStateUnknown)
	assert.Error(t, err)
}

func TestNewHost(t *testing.T) {
	h, err := NewHost("oss-01", HostStatePackagesInstalled)
	require.NoError(t, err)

	assert.Equal(t, "oss-01", h.Name)
	assert.Equal(t, HostStatePackagesInstalled, h.State)
	assert.Equal(t, SchemaContext, h.Context)
	assert.Equal(t, HostType, h.Type)
	assert.Contains(t, h.ID, "host:")
	assert.False(t, h.UpdatedAt.IsZero())
	assert.True(t, h.Is(HostStatePackagesInstalled))
	assert.False(t, h.Is(HostStateWorking))
}

func TestNewHost_RequiresState(t *testing.T) {
	_, err := NewHost("oss-01", HostStateUnknown)
	assert.ErrorIs(t, err, ErrUnknownHostState)

	_, err = NewHost("oss-01", HostState(99))
	assert.ErrorIs(t, err, ErrUnknownHostState)
}

func TestHost_JSONRoundTrip(t *testing.T) {
	h, err := NewHost("mds-01", HostStateWorking)
	require.NoError(t, err)
	h.Datacenter = "fra-1"

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hostState":"working"`)
	assert.Contains(t, string(data), `"location":"fra-1"`)

	var decoded Host
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h.ID, decoded.ID)
	assert.Equal(t, HostStateWorking, decoded.State)
}
