package domain

import (
	"encoding/json"
	"fmt"
)

// Segment classifies a submission for the extended question sets.
type Segment string

const (
	SegmentArtist    Segment = "artist"
	SegmentCommunity Segment = "community"
)

// AllSegments is the fixed, ordered segment catalog.
var AllSegments = []Segment{SegmentArtist, SegmentCommunity}

// ParseSegment accepts "artist" or "community".
func ParseSegment(s string) (Segment, error) {
	switch Segment(s) {
	case SegmentArtist, SegmentCommunity:
		return Segment(s), nil
	}
	return "", fmt.Errorf("domain: unknown segment %q", s)
}

// SegmentAnswers is the answer set for one segment. Each variant carries its
// own fixed five-question schema.
type SegmentAnswers interface {
	Segment() Segment
	// Answers returns the five answers in question order.
	Answers() [5]string
}

// ArtistAnswers is the artist question set.
type ArtistAnswers struct {
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`
	Q5 string `json:"q5"`
}

func (ArtistAnswers) Segment() Segment { return SegmentArtist }

func (a ArtistAnswers) Answers() [5]string { return [5]string{a.Q1, a.Q2, a.Q3, a.Q4, a.Q5} }

// CommunityAnswers is the community question set.
type CommunityAnswers struct {
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`
	Q5 string `json:"q5"`
}

func (CommunityAnswers) Segment() Segment { return SegmentCommunity }

func (c CommunityAnswers) Answers() [5]string { return [5]string{c.Q1, c.Q2, c.Q3, c.Q4, c.Q5} }

// SegmentAnswerSet holds answers only for the segments a submission belongs to.
type SegmentAnswerSet map[Segment]SegmentAnswers

type taggedAnswers struct {
	Segment Segment         `json:"segment"`
	Answers json.RawMessage `json:"answers"`
}

// MarshalJSON encodes as [{"segment":"artist","answers":{...}}, ...] in
// catalog order.
func (set SegmentAnswerSet) MarshalJSON() ([]byte, error) {
	out := make([]taggedAnswers, 0, len(set))
	for _, seg := range AllSegments {
		ans, ok := set[seg]
		if !ok {
			continue
		}
		raw, err := json.Marshal(ans)
		if err != nil {
			return nil, err
		}
		out = append(out, taggedAnswers{Segment: seg, Answers: raw})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged list form.
func (set *SegmentAnswerSet) UnmarshalJSON(data []byte) error {
	var items []taggedAnswers
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		*set = nil
		return nil
	}
	m := make(SegmentAnswerSet, len(items))
	for _, it := range items {
		ans, err := DecodeSegmentAnswers(it.Segment, it.Answers)
		if err != nil {
			return err
		}
		m[it.Segment] = ans
	}
	*set = m
	return nil
}

// DecodeSegmentAnswers decodes raw JSON into the variant for seg.
func DecodeSegmentAnswers(seg Segment, raw []byte) (SegmentAnswers, error) {
	switch seg {
	case SegmentArtist:
		var a ArtistAnswers
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("domain: artist answers: %w", err)
			}
		}
		return a, nil
	case SegmentCommunity:
		var c CommunityAnswers
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("domain: community answers: %w", err)
			}
		}
		return c, nil
	}
	return nil, fmt.Errorf("domain: unknown segment %q", seg)
}
