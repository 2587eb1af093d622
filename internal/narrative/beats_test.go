package narrative

import (
	"encoding/json"
	"testing"

	"shelley-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBeatsCatalogue(t *testing.T) {
	require.Len(t, DefaultBeats, 8)
	assert.Equal(t, []string{
		"intro", "workshop", "gallery", "invitation",
		"the_break", "first_steps", "magus_meeting", "explore_complete",
	}, BeatIDs())

	seen := make(map[string]bool)
	for _, beat := range DefaultBeats {
		assert.False(t, seen[beat.ID], "duplicate beat id %s", beat.ID)
		seen[beat.ID] = true
		assert.NotEmpty(t, beat.TriggerType, "beat %s missing trigger", beat.ID)
		assert.NotEmpty(t, beat.Lines, "beat %s has no lines", beat.ID)
	}
}

func TestDefaultBeatSignals(t *testing.T) {
	signals := make(map[string]string)
	for _, beat := range DefaultBeats {
		if beat.Signal != "" {
			signals[beat.ID] = beat.Signal
		}
	}
	assert.Equal(t, map[string]string{
		"the_break":        "morph_to_platformer",
		"explore_complete": "onboarding_complete",
	}, signals)
}

func TestValidBeatID(t *testing.T) {
	assert.True(t, ValidBeatID("intro"))
	assert.True(t, ValidBeatID("magus_meeting"))
	assert.False(t, ValidBeatID("finale"))
	assert.False(t, ValidBeatID(""))
}

func TestMergeReplacesLinesAndMarksOverridden(t *testing.T) {
	merged := Merge([]models.BeatOverride{
		{BeatID: "intro", Lines: []models.BeatLine{{Text: "Fresh intro line."}}},
	})

	require.Len(t, merged, len(DefaultBeats))
	assert.True(t, merged[0].Overridden)
	assert.Equal(t, []models.BeatLine{{Text: "Fresh intro line."}}, merged[0].Lines)
	// Trigger metadata survives an override.
	assert.Equal(t, "distance", merged[0].TriggerType)
	assert.Equal(t, 200, merged[0].TriggerDistance)

	for _, beat := range merged[1:] {
		assert.False(t, beat.Overridden, "beat %s should be untouched", beat.ID)
	}
}

func TestMergeDoesNotMutateDefaults(t *testing.T) {
	original := DefaultBeats[0].Lines[0].Text
	Merge([]models.BeatOverride{
		{BeatID: "intro", Lines: []models.BeatLine{{Text: "mutated?"}}},
	})
	assert.Equal(t, original, DefaultBeats[0].Lines[0].Text)
}

func TestMergeUnknownOverrideIsIgnored(t *testing.T) {
	merged := Merge([]models.BeatOverride{
		{BeatID: "not_a_beat", Lines: []models.BeatLine{{Text: "orphan"}}},
	})
	for _, beat := range merged {
		assert.False(t, beat.Overridden)
	}
}

func TestBeatWireFormat(t *testing.T) {
	raw, err := json.Marshal(DefaultBeats[6])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "magus_meeting", decoded["id"])
	assert.Equal(t, "area_entered", decoded["trigger_type"])
	assert.Equal(t, "amphitheatre", decoded["trigger_area"])
	assert.NotContains(t, decoded, "_overridden")

	lines, ok := decoded["lines"].([]any)
	require.True(t, ok)
	first, ok := lines[0].(map[string]any)
	require.True(t, ok, "speaker lines serialize as objects")
	assert.Equal(t, "Po", first["speaker"])
}
