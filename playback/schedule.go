package playback

import (
	"sort"

	"github.com/quaverlabs/partita/model"
	"github.com/quaverlabs/partita/util"
)

// Kind orders identically-ticked events: note-offs sort before note-ons
// so a pitch restarting at the instant it stops never overlaps itself.
type Kind uint8

const (
	NoteOff Kind = iota
	NoteOn
)

type Event struct {
	Tick     uint64
	Kind     Kind
	Key      uint8
	Velocity uint8
}

type TempoChange struct {
	Tick uint64
	BPM  float64
}

type MeterChange struct {
	Tick     uint64
	Beats    uint8
	BeatType uint8
}

// TrackSchedule is the ordered note event stream of one part.
type TrackSchedule struct {
	PartID  string
	Channel uint8
	Events  []Event
}

// Schedule is the playback plan for a whole score: one note track per
// part plus the shared tempo/meter meta stream.
type Schedule struct {
	TicksPerQuarter uint16
	Tracks          []TrackSchedule
	Tempos          []TempoChange
	Meters          []MeterChange
}

const defaultVelocity = 80

// scaleTicks converts a position in division units to ticks, rounding
// half up.
func scaleTicks(pos, divisions int, tpq uint16) uint64 {
	if divisions <= 0 {
		divisions = 1
	}
	if pos <= 0 {
		return 0
	}
	n := int64(pos) * int64(tpq)
	d := int64(divisions)
	return uint64((2*n + d) / (2 * d))
}

// partChannel assigns each part a MIDI channel, skipping the percussion
// channel.
func partChannel(partIndex int) uint8 {
	ch := partIndex
	if ch >= 9 {
		ch++
	}
	return uint8(ch % 16)
}

// SchedulePart expands a part's repeats and converts its notated
// content into absolute-tick note events plus the part's tempo and
// meter changes, all in playback order.
func SchedulePart(part model.Part, partIndex int, tpq uint16) (TrackSchedule, []TempoChange, []MeterChange) {
	measures := part.Measures

	// Divisions and time signature are resolved by a forward fold in
	// document order; a repeated measure uses whatever was active the
	// one time it is visited by that fold, not re-derived per pass.
	divAt := make([]int, len(measures))
	timeAt := make([]*model.TimeSignature, len(measures))
	div := 0
	var ts *model.TimeSignature
	for i, m := range measures {
		if m.Attributes != nil {
			if m.Attributes.Divisions != nil && *m.Attributes.Divisions > 0 {
				div = *m.Attributes.Divisions
			}
			if m.Attributes.Time != nil {
				ts = m.Attributes.Time
			}
		}
		divAt[i] = div
		timeAt[i] = ts
	}

	track := TrackSchedule{PartID: part.ID, Channel: partChannel(partIndex)}
	var tempos []TempoChange
	var meters []MeterChange
	var lastBPM float64
	var lastMeter *model.TimeSignature

	var cursor uint64
	for _, mi := range ExpandRepeats(measures) {
		m := measures[mi]
		mdiv := divAt[mi]

		if m.Attributes != nil && m.Attributes.Time != nil && !m.Attributes.Time.SenzaMisura {
			t := m.Attributes.Time
			if lastMeter == nil || *lastMeter != *t {
				meters = append(meters, MeterChange{Tick: cursor, Beats: uint8(t.Beats), BeatType: uint8(t.BeatType)})
				lastMeter = t
			}
		}

		pos := 0
		lastNoteStart := 0
		maxPos := 0
		for _, e := range m.Entries {
			switch {
			case e.Note != nil:
				n := e.Note
				if n.Grace {
					continue
				}
				start := pos
				if n.Chord {
					start = lastNoteStart
				} else {
					lastNoteStart = pos
					if n.Duration > 0 {
						pos += n.Duration
					}
				}
				maxPos = util.Max(maxPos, start+n.Duration)

				if n.Pitch == nil {
					continue
				}
				key, ok := n.Pitch.MIDINote()
				if !ok {
					continue
				}
				// A tie stop continues a sounding note rather than
				// restarting it; a tie start leaves the note sounding
				// into the next one.
				if !n.HasTie(model.SpannerStop) {
					track.Events = append(track.Events, Event{
						Tick:     cursor + scaleTicks(start, mdiv, tpq),
						Kind:     NoteOn,
						Key:      key,
						Velocity: defaultVelocity,
					})
				}
				if !n.HasTie(model.SpannerStart) {
					track.Events = append(track.Events, Event{
						Tick: cursor + scaleTicks(start+n.Duration, mdiv, tpq),
						Kind: NoteOff,
						Key:  key,
					})
				}
			case e.Forward != nil:
				if e.Forward.Duration > 0 {
					pos += e.Forward.Duration
				}
				maxPos = util.Max(maxPos, pos)
			case e.Backup != nil:
				pos -= e.Backup.Duration
				if pos < 0 {
					pos = 0
				}
			case e.Direction != nil:
				if e.Direction.Sound != nil && e.Direction.Sound.Tempo > 0 {
					bpm := e.Direction.Sound.Tempo
					if bpm != lastBPM {
						tempos = append(tempos, TempoChange{
							Tick: cursor + scaleTicks(pos, mdiv, tpq),
							BPM:  bpm,
						})
						lastBPM = bpm
					}
				}
			}
		}

		cursor += scaleTicks(measureLength(m, timeAt[mi], mdiv, maxPos), mdiv, tpq)
	}

	sortEvents(track.Events)
	return track, tempos, meters
}

// measureLength is the cursor advance for a measure in division units.
// Pickup (implicit) measures span only what their voices actually fill;
// otherwise the time-signature length caps the actual fill so an
// overfull encoding cannot push later measures out of alignment, and a
// truncated measure merging into a following pickup advances only by
// its real content.
func measureLength(m model.Measure, ts *model.TimeSignature, div, maxPos int) int {
	if m.Implicit {
		return maxPos
	}
	if ts == nil || ts.SenzaMisura || ts.BeatType <= 0 {
		return maxPos
	}
	tsLen := ts.Beats * 4 * div / ts.BeatType
	if maxPos == 0 {
		return tsLen
	}
	return util.Min(tsLen, maxPos)
}

// sortEvents orders by tick, then note-off before note-on, then key.
func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Tick != events[j].Tick {
			return events[i].Tick < events[j].Tick
		}
		if events[i].Kind != events[j].Kind {
			return events[i].Kind < events[j].Kind
		}
		return events[i].Key < events[j].Key
	})
}

// ScheduleScore schedules every part and merges their tempo and meter
// changes into the single shared meta stream. At equal ticks the
// earlier part wins.
func ScheduleScore(score model.Score, tpq uint16) Schedule {
	s := Schedule{TicksPerQuarter: tpq}
	for pi, part := range score.Parts {
		track, tempos, meters := SchedulePart(part, pi, tpq)
		s.Tracks = append(s.Tracks, track)
		s.Tempos = append(s.Tempos, tempos...)
		s.Meters = append(s.Meters, meters...)
	}
	sort.SliceStable(s.Tempos, func(i, j int) bool { return s.Tempos[i].Tick < s.Tempos[j].Tick })
	sort.SliceStable(s.Meters, func(i, j int) bool { return s.Meters[i].Tick < s.Meters[j].Tick })
	s.Tempos = dedupeTempos(s.Tempos)
	s.Meters = dedupeMeters(s.Meters)
	return s
}

func dedupeTempos(changes []TempoChange) []TempoChange {
	var res []TempoChange
	for _, c := range changes {
		if len(res) > 0 && res[len(res)-1].Tick == c.Tick {
			continue
		}
		if len(res) > 0 && res[len(res)-1].BPM == c.BPM {
			continue
		}
		res = append(res, c)
	}
	return res
}

func dedupeMeters(changes []MeterChange) []MeterChange {
	var res []MeterChange
	for _, c := range changes {
		if len(res) > 0 && res[len(res)-1].Tick == c.Tick {
			continue
		}
		prev := len(res) - 1
		if len(res) > 0 && res[prev].Beats == c.Beats && res[prev].BeatType == c.BeatType {
			continue
		}
		res = append(res, c)
	}
	return res
}
