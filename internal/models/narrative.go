package models

import (
	"encoding/json"
	"time"
)

// BeatLine is one dialogue line. The wire form is either a bare string
// (narrator/Po voice) or a {"speaker": ..., "text": ...} object.
type BeatLine struct {
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

// beatLineObject is the explicit two-field wire form.
type beatLineObject struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (l BeatLine) MarshalJSON() ([]byte, error) {
	if l.Speaker == "" {
		return json.Marshal(l.Text)
	}
	return json.Marshal(beatLineObject{Speaker: l.Speaker, Text: l.Text})
}

func (l *BeatLine) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		l.Speaker = ""
		l.Text = plain
		return nil
	}
	var obj beatLineObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return ErrInvalidBeatLine
	}
	if obj.Text == "" && obj.Speaker == "" {
		return ErrInvalidBeatLine
	}
	l.Speaker = obj.Speaker
	l.Text = obj.Text
	return nil
}

// Beat is a narrative dialogue unit: a trigger condition plus a line
// sequence, optionally ending in a signal back to the host.
type Beat struct {
	ID              string     `json:"id"`
	TriggerType     string     `json:"trigger_type"`
	TriggerDistance int        `json:"trigger_distance,omitempty"`
	TriggerCount    int        `json:"trigger_count,omitempty"`
	TriggerDelay    int        `json:"trigger_delay,omitempty"`
	TriggerArea     string     `json:"trigger_area,omitempty"`
	Lines           []BeatLine `json:"lines"`
	Signal          string     `json:"signal,omitempty"`
	Overridden      bool       `json:"_overridden,omitempty"`
}

// BeatOverride is a CMS-authored replacement line sequence for one beat.
type BeatOverride struct {
	BeatID    string     `json:"beatId" db:"beat_id"`
	Lines     []BeatLine `json:"lines" db:"lines"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	UpdatedBy string     `json:"updatedBy" db:"updated_by"`
}
