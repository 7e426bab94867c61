package provenance

import "time"

// #region source

// Source identifies why a field holds its current value.
type Source string

const (
	SourceDefault   Source = "default"
	SourceSuggested Source = "suggested"
	SourceUser      Source = "user"
)

// Authority orders sources by who gets to overwrite whom. A suggestion merge
// may only move a field forward in authority; any user edit jumps to the top.
func (s Source) Authority() int {
	switch s {
	case SourceSuggested:
		return 1
	case SourceUser:
		return 2
	default:
		return 0
	}
}

// Valid reports whether s is one of the three known sources.
func (s Source) Valid() bool {
	return s == SourceDefault || s == SourceSuggested || s == SourceUser
}

// #endregion source

// #region tag

// Tag is the provenance record attached to a tracked field.
type Tag struct {
	Source     Source    `json:"source"`
	Confidence *float64  `json:"confidence"`
	Rationale  []string  `json:"rationale,omitempty"`
	References []string  `json:"references,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the tag.
func (t Tag) Clone() Tag {
	out := t
	if t.Confidence != nil {
		c := *t.Confidence
		out.Confidence = &c
	}
	if t.Rationale != nil {
		out.Rationale = append([]string(nil), t.Rationale...)
	}
	if t.References != nil {
		out.References = append([]string(nil), t.References...)
	}
	return out
}

// DefaultTag returns the tag a tracked field starts with.
func DefaultTag(now time.Time) Tag {
	return Tag{Source: SourceDefault, UpdatedAt: now}
}

// UserTag returns the tag applied when the user explicitly edits a field.
// Confidence and rationale are dropped: the value no longer needs justifying.
func UserTag(now time.Time) Tag {
	return Tag{Source: SourceUser, UpdatedAt: now}
}

// Suggested builds a tag for a system-suggested value.
func Suggested(confidence *float64, rationale, references []string, now time.Time) Tag {
	t := Tag{
		Source:    SourceSuggested,
		UpdatedAt: now,
	}
	if confidence != nil {
		c := *confidence
		t.Confidence = &c
	}
	if len(rationale) > 0 {
		t.Rationale = append([]string(nil), rationale...)
	}
	if len(references) > 0 {
		t.References = append([]string(nil), references...)
	}
	return t
}

// CanSuggestOver reports whether a suggestion merge is allowed to replace the
// value this tag describes. User-sourced values are never suggestion targets.
func (t Tag) CanSuggestOver() bool {
	return t.Source != SourceUser
}

// #endregion tag
