package quest

import (
	"encoding/json"
	"fmt"
)

// Beat kind discriminators used on the wire and in storage.
const (
	KindStep       = "step"
	KindBossMoment = "boss_moment"
	KindArtifact   = "artifact"
)

// Beat is one narrative unit inside a module payload. The sequence order
// is narrative order and must survive storage and sync unchanged.
//
// The variant set is closed: Step, BossMoment, Artifact. A payload
// carrying any other kind fails to decode, which in turn fails
// validation of the candidate that carried it.
type Beat interface {
	Kind() string
	isBeat()
}

// Step is a concrete instruction for the players.
type Step struct {
	Text string `json:"text"`
}

// BossMoment is the climactic beat of a module.
type BossMoment struct {
	Text string `json:"text"`
}

// Artifact is a physical or printed prop handed to the players.
type Artifact struct {
	Type     string  `json:"type"` // map | riddle | image | herring | token
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Answer   *string `json:"answer"`
	Hint     *string `json:"hint"`
	MapQuery *string `json:"map_query"`
}

func (Step) Kind() string       { return KindStep }
func (BossMoment) Kind() string { return KindBossMoment }
func (Artifact) Kind() string   { return KindArtifact }

func (Step) isBeat()       {}
func (BossMoment) isBeat() {}
func (Artifact) isBeat()   {}

func (s Step) MarshalJSON() ([]byte, error) {
	type alias Step
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{KindStep, alias(s)})
}

func (b BossMoment) MarshalJSON() ([]byte, error) {
	type alias BossMoment
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{KindBossMoment, alias(b)})
}

func (a Artifact) MarshalJSON() ([]byte, error) {
	type alias Artifact
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{KindArtifact, alias(a)})
}

// Beats is an ordered beat sequence.
type Beats []Beat

// UnmarshalJSON decodes each element by its kind discriminator.
func (b *Beats) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Beats, 0, len(raw))
	for i, r := range raw {
		var probe struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(r, &probe); err != nil {
			return fmt.Errorf("beat %d: %w", i, err)
		}
		switch probe.Kind {
		case KindStep:
			var s Step
			if err := json.Unmarshal(r, &s); err != nil {
				return fmt.Errorf("beat %d: %w", i, err)
			}
			out = append(out, s)
		case KindBossMoment:
			var bm BossMoment
			if err := json.Unmarshal(r, &bm); err != nil {
				return fmt.Errorf("beat %d: %w", i, err)
			}
			out = append(out, bm)
		case KindArtifact:
			var a Artifact
			if err := json.Unmarshal(r, &a); err != nil {
				return fmt.Errorf("beat %d: %w", i, err)
			}
			out = append(out, a)
		default:
			return fmt.Errorf("beat %d: unknown kind %q", i, probe.Kind)
		}
	}
	*b = out
	return nil
}

// Counts tallies the sequence by kind.
func (b Beats) Counts() (steps, bossMoments, artifacts int) {
	for _, beat := range b {
		switch beat.(type) {
		case Step:
			steps++
		case BossMoment:
			bossMoments++
		case Artifact:
			artifacts++
		}
	}
	return
}
