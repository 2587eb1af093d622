// Package narrative owns the beat catalogue: the compiled-in default
// dialogue plus CMS overrides merged on top. The defaults here mirror
// the beat data baked into the game build; overrides replace lines for
// matching beat ids but never add or remove beats.
package narrative

import "shelley-server/internal/models"

// DefaultBeats is the authoritative beat list. Order matters: the game
// receives beats in this order and the admin UI lists them the same way.
var DefaultBeats = []models.Beat{
	{
		ID:              "intro",
		TriggerType:     "distance",
		TriggerDistance: 200,
		Lines: lines(
			"Oh hey! You're actually controlling me? Cool cool cool.",
			"Name's Po. Skeleton ghost. Fur-trimmed hoodie enthusiast.",
			"My memory gets fuzzy from time to time. And time... sometimes again times...",
			"Ah, Djinn World. Home. Pops told the palace guard to come find me, so I try to street rat it up and gather supplies for the adventures.",
			"Just help me jump over stuff. We'll find Captain Magus and figure out the rest via his idearrhea.",
		),
	},
	{
		ID:              "workshop",
		TriggerType:     "distance",
		TriggerDistance: 500,
		Lines: lines(
			"Hold up. You smell that? Sawdust and lacquer.",
			"And that THING the big cat dropped... what is it?",
			"It's warm. Humming. Like it wants to be part of something bigger.",
			"I think we're near a luthier's workshop.",
			"That's a guitar maker, fam.",
			"...Someone scattered these pieces on purpose. Keep moving.",
		),
	},
	{
		ID:              "gallery",
		TriggerType:     "distance",
		TriggerDistance: 900,
		Lines: lines(
			"Real talk for a second.",
			"You're still here. Playing a run game? That makes you an OG.",
			"You know there's a whole website behind this game, right? Like RIGHT behind it.",
			"Sign up. Save your progress. Get emails about cool stuff — builds, drops, music.",
			"Or don't. I'm not a cop.",
			"...OK back to running. Collecting them all leads to good things...",
		),
	},
	{
		ID:              "invitation",
		TriggerType:     "distance",
		TriggerDistance: 1600,
		Lines: lines(
			"FOUR pieces. Four out of... I don't even know how many.",
			"But I can FEEL them now. They're pulling me forward.",
			"There's a place up ahead — Shelley Guitar. Custom builds, wild designs.",
			"These pieces — they're connected to whoever built this place.",
			"Every time those big freaks show up, I get to MOVE for a second.",
			"Like the fight breaks the rules. Like the cage has cracks.",
		),
	},
	{
		ID:           "the_break",
		TriggerType:  "piece_collected",
		TriggerCount: 6,
		Lines: lines(
			"Wait. WAIT. What's happening?",
			"The world... it stopped. The scrolling. The endless running.",
			"SIX pieces. That's all six.",
			"We gotta get Magus.",
			"...",
			"Follow me.",
		),
		Signal: "morph_to_platformer",
	},
	{
		ID:           "first_steps",
		TriggerType:  "post_morph_timer",
		TriggerDelay: 30,
		Lines: lines(
			"This is wild. Actual freedom of movement.",
			"There's a platform up there... and is that a DOOR?",
			"Captain Magus built this whole place. The architect. The mad scientist.",
			"I bet there's way more to find if we keep looking.",
		),
	},
	{
		ID:          "magus_meeting",
		TriggerType: "area_entered",
		TriggerArea: "amphitheatre",
		Lines: []models.BeatLine{
			{Speaker: "Po", Text: "Captain? You're HERE?"},
			{Speaker: "Magus", Text: "Of course. Where'd you think I'd be?"},
			{Speaker: "Po", Text: "*stares off blankly....*"},
			{Speaker: "Magus", Text: "How's mom?"},
			{Speaker: "Po", Text: "*snaps back* I haven't called her in well over a week."},
			{Speaker: "Magus", Text: "Well don't just stand there — hand me that diamond coated file behind you."},
		},
	},
	{
		ID:          "explore_complete",
		TriggerType: "area_entered",
		TriggerArea: "exit_portal",
		Lines: lines(
			"Alright! We cracked this place open.",
			"There's a whole site out there — builds, stories, music, everything.",
			"Go explore. I'll be around. I'm literally embedded in this website.",
			"And if you see any glowing orbs lying around... they're MINE.",
			"Po out. *morphs into the footer*",
		),
		Signal: "onboarding_complete",
	},
}

// ValidBeatID reports whether id names one of the default beats.
// Overrides may only target beats the game actually knows about.
func ValidBeatID(id string) bool {
	for _, beat := range DefaultBeats {
		if beat.ID == id {
			return true
		}
	}
	return false
}

// BeatIDs returns the default beat ids in catalogue order.
func BeatIDs() []string {
	ids := make([]string, len(DefaultBeats))
	for i, beat := range DefaultBeats {
		ids[i] = beat.ID
	}
	return ids
}

// Merge overlays overrides onto the default catalogue. Beats with an
// override get its lines and the overridden marker; everything else is
// returned as compiled in. The defaults themselves are never mutated.
func Merge(overrides []models.BeatOverride) []models.Beat {
	overrideMap := make(map[string][]models.BeatLine, len(overrides))
	for _, override := range overrides {
		overrideMap[override.BeatID] = override.Lines
	}

	merged := make([]models.Beat, len(DefaultBeats))
	for i, beat := range DefaultBeats {
		if overrideLines, ok := overrideMap[beat.ID]; ok {
			beat.Lines = overrideLines
			beat.Overridden = true
		}
		merged[i] = beat
	}
	return merged
}

func lines(texts ...string) []models.BeatLine {
	result := make([]models.BeatLine, len(texts))
	for i, text := range texts {
		result[i] = models.BeatLine{Text: text}
	}
	return result
}
