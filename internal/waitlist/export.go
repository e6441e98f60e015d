package waitlist

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kyozo/waitlist/internal/domain"
)

// exportHeaders is the column order of the dashboard CSV.
var exportHeaders = []string{
	"Timestamp",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Location",
	"Role Types",
	"Creative Work",
	"Segments",
	"Artist Q1", "Artist Q2", "Artist Q3", "Artist Q4", "Artist Q5",
	"Community Q1", "Community Q2", "Community Q3", "Community Q4", "Community Q5",
	"Product Feedback Survey",
	"Resonance Level",
	"Resonance Reasons",
	"Beta Communities",
}

const listSep = "; "

// Export is a rendered CSV download.
type Export struct {
	Filename   string
	Data       []byte
	Rows       int
	ArchiveKey string
}

// ExportFilename is the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "kyozo-waitlist-" + t.UTC().Format("2006-01-02") + ".csv"
}

// Export renders every submission as CSV, newest first. When an archiver is
// configured the file is also archived; an archive failure is logged and the
// download still succeeds.
func (s *Service) Export(ctx context.Context) (*Export, error) {
	subs, err := s.submissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	data, err := WriteCSV(subs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := &Export{Filename: ExportFilename(now), Data: data, Rows: len(subs)}
	if s.archiver != nil {
		key, err := s.archiver.ArchiveExport(ctx, now, data)
		if err != nil {
			log.Printf("[waitlist] export archive failed: %v", err)
		} else {
			out.ArchiveKey = key
		}
	}
	return out, nil
}

// WriteCSV renders submissions with the dashboard headers.
func WriteCSV(subs []domain.Submission) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range subs {
		if err := w.Write(exportRow(&subs[i])); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(sub *domain.Submission) []string {
	segs := sub.Segments()
	names := make([]string, len(segs))
	for i, sg := range segs {
		names[i] = string(sg)
	}

	var artist, community [5]string
	if a, ok := sub.SegmentAnswers[domain.SegmentArtist]; ok {
		artist = a.Answers()
	}
	if c, ok := sub.SegmentAnswers[domain.SegmentCommunity]; ok {
		community = c.Answers()
	}

	row := []string{
		sub.Timestamp.UTC().Format(time.RFC3339),
		sub.FirstName,
		sub.LastName,
		sub.Email,
		sub.Phone,
		sub.Location,
		strings.Join(sub.RoleTypes, listSep),
		sub.CreativeWork,
		strings.Join(names, listSep),
	}
	row = append(row, artist[:]...)
	row = append(row, community[:]...)
	return append(row,
		sub.BetaTesting,
		sub.ResonanceLevel,
		strings.Join(sub.ResonanceReasons, listSep),
		strings.Join(sub.CommunitySelections, listSep),
	)
}
