package types

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestIssueTypeEnum(t *testing.T) {
	require.Len(t, IssueTypes, 12)
	for _, issueType := range IssueTypes {
		require.True(t, issueType.Valid())
		require.NotEmpty(t, issueType.Label())
	}

	require.False(t, IssueType("earthquake").Valid())
	require.Equal(t, "Broken Water Meter", IssueTypeBrokenMeter.Label())
}

func TestStatusEnum(t *testing.T) {
	for _, status := range IncidentStatuses {
		require.True(t, status.Valid())
	}
	require.False(t, IncidentStatus("archived").Valid())
}

func TestStatusBadgeColors(t *testing.T) {
	require.Equal(t, "orange", IncidentStatusReceived.BadgeColor())
	require.Equal(t, "blue", IncidentStatusProcessing.BadgeColor())
	require.Equal(t, "green", IncidentStatusCompleted.BadgeColor())
	require.Equal(t, "grey", IncidentStatus("unknown").BadgeColor())
}

func TestSeverityBadgeColors(t *testing.T) {
	require.Equal(t, "gray", SeverityLow.BadgeColor())
	require.Equal(t, "blue", SeverityModerate.BadgeColor())
	require.Equal(t, "orange", SeverityHigh.BadgeColor())
	require.Equal(t, "red", SeverityCritical.BadgeColor())
	require.Equal(t, "black", Severity("unknown").BadgeColor())
}

func TestShortDescription(t *testing.T) {
	short := &IncidentRow{Incident: Incident{Description: "Burst pipe."}}
	require.Equal(t, "Burst pipe.", short.ShortDescription())

	long := &IncidentRow{Incident: Incident{Description: strings.Repeat("water ", 20)}}
	require.Equal(t, strings.Repeat("water ", 20)[:75]+"...", long.ShortDescription())

	// Multi-byte text truncates on rune boundaries.
	wide := &IncidentRow{Incident: Incident{Description: strings.Repeat("é", 80)}}
	got := wide.ShortDescription()
	require.Equal(t, strings.Repeat("é", 75)+"...", got)
	require.True(t, utf8.ValidString(got))
}

func TestHasLocation(t *testing.T) {
	lat, lng, zero := 12.34567, -7.65432, 0.0

	require.True(t, (&Incident{Latitude: &lat, Longitude: &lng}).HasLocation())
	require.False(t, (&Incident{}).HasLocation())
	require.False(t, (&Incident{Latitude: &lat}).HasLocation())

	// (0, 0) renders as "no location" even though the values are stored.
	require.False(t, (&Incident{Latitude: &zero, Longitude: &zero}).HasLocation())
	require.True(t, (&Incident{Latitude: &lat, Longitude: &zero}).HasLocation())
}
