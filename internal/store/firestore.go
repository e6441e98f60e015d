package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/pkg/httpretry"
)

const firestoreScope = "https://www.googleapis.com/auth/datastore"

// FirestoreRepository talks to the Firestore REST API with a service
// account. Documents keep the field names existing readers expect.
type FirestoreRepository struct {
	baseURL    string
	project    string
	collection string
	httpClient httpretry.HTTPDoer
	now        func() time.Time
}

// NewFirestoreRepository authenticates with the service-account fields in cfg.
func NewFirestoreRepository(ctx context.Context, cfg config.FirestoreConfig) *FirestoreRepository {
	jwtCfg := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{firestoreScope},
		TokenURL:   google.JWTTokenURL,
	}
	authed := jwtCfg.Client(ctx)
	authed.Timeout = 20 * time.Second
	return NewFirestoreRepositoryWithClient(cfg.BaseURL, cfg.ProjectID, cfg.Collection,
		httpretry.NewRetryClient(authed, 2))
}

// NewFirestoreRepositoryWithClient uses doer as is.
func NewFirestoreRepositoryWithClient(baseURL, project, collection string, doer httpretry.HTTPDoer) *FirestoreRepository {
	return &FirestoreRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		project:    project,
		collection: collection,
		httpClient: doer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *FirestoreRepository) documentsURL() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents", r.baseURL, r.project)
}

// Create writes the document under a client-generated id so a retried POST
// that already landed is recognised by its 409 instead of duplicating.
func (r *FirestoreRepository) Create(ctx context.Context, sub *domain.Submission) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	stored := sub.Clone()
	stored.ID = id.String()
	stored.Timestamp = r.now()

	body, err := json.Marshal(fsDocument{Fields: encodeSubmission(stored)})
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	u := r.documentsURL() + "/" + url.PathEscape(r.collection) + "?documentId=" + url.QueryEscape(stored.ID)

	status, _, err := r.do(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", fmt.Errorf("create submission: %w", err)
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return "", fmt.Errorf("create submission: firestore status %d", status)
	}

	sub.ID, sub.Timestamp = stored.ID, stored.Timestamp
	return stored.ID, nil
}

type runQueryResult struct {
	Document *fsDocument `json:"document"`
}

func (r *FirestoreRepository) List(ctx context.Context) ([]domain.Submission, error) {
	query := map[string]any{
		"structuredQuery": map[string]any{
			"from": []map[string]string{{"collectionId": r.collection}},
			"orderBy": []map[string]any{{
				"field":     map[string]string{"fieldPath": "timestamp"},
				"direction": "DESCENDING",
			}},
		},
	}
	body, _ := json.Marshal(query)

	status, resp, err := r.do(ctx, http.MethodPost, r.documentsURL()+":runQuery", body)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list submissions: firestore status %d: %s", status, string(resp))
	}

	var results []runQueryResult
	if err := json.Unmarshal(resp, &results); err != nil {
		return nil, fmt.Errorf("parsing query results: %w", err)
	}
	out := make([]domain.Submission, 0, len(results))
	for _, res := range results {
		if res.Document == nil {
			continue
		}
		sub, err := decodeSubmission(*res.Document)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	u := r.documentsURL() + "/" + url.PathEscape(r.collection) + "/" + url.PathEscape(id) +
		"?currentDocument.exists=true"
	status, resp, err := r.do(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	}
	return fmt.Errorf("delete submission: firestore status %d: %s", status, string(resp))
}

func (r *FirestoreRepository) Ping(ctx context.Context) error {
	u := r.documentsURL() + "/" + url.PathEscape(r.collection) + "?pageSize=1&mask.fieldPaths=__name__"
	status, _, err := r.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("firestore status %d", status)
	}
	return nil
}

func (r *FirestoreRepository) do(ctx context.Context, method, u string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Firestore REST value encoding.

type fsValue struct {
	StringValue    *string `json:"stringValue,omitempty"`
	IntegerValue   *string `json:"integerValue,omitempty"`
	TimestampValue *string `json:"timestampValue,omitempty"`
	ArrayValue     *fsList `json:"arrayValue,omitempty"`
	MapValue       *fsMap  `json:"mapValue,omitempty"`
}

type fsList struct {
	Values []fsValue `json:"values,omitempty"`
}

type fsMap struct {
	Fields map[string]fsValue `json:"fields,omitempty"`
}

type fsDocument struct {
	Name       string             `json:"name,omitempty"`
	Fields     map[string]fsValue `json:"fields"`
	CreateTime string             `json:"createTime,omitempty"`
}

func fsString(s string) fsValue { return fsValue{StringValue: &s} }

func fsStrings(list []string) fsValue {
	vals := make([]fsValue, len(list))
	for i, s := range list {
		vals[i] = fsString(s)
	}
	return fsValue{ArrayValue: &fsList{Values: vals}}
}

func fsAnswers(a [5]string) fsValue {
	fields := make(map[string]fsValue, 5)
	for i, v := range a {
		fields["q"+strconv.Itoa(i+1)] = fsString(v)
	}
	return fsValue{MapValue: &fsMap{Fields: fields}}
}

func encodeSubmission(s *domain.Submission) map[string]fsValue {
	ts := s.Timestamp.Format(time.RFC3339Nano)
	f := map[string]fsValue{
		"userId":                fsString(s.UserID),
		"timestamp":             {TimestampValue: &ts},
		"firstName":             fsString(s.FirstName),
		"lastName":              fsString(s.LastName),
		"email":                 fsString(s.Email),
		"phone":                 fsString(s.Phone),
		"location":              fsString(s.Location),
		"creativeWork":          fsString(s.CreativeWork),
		"betaTesting":           fsString(s.BetaTesting),
		"productFeedbackSurvey": fsString(s.BetaTesting),
		"resonanceLevel":        fsString(s.ResonanceLevel),
	}
	if s.RoleTypes != nil {
		f["roleTypes"] = fsStrings(s.RoleTypes)
	}
	if s.ResonanceReasons != nil {
		f["resonanceReasons"] = fsStrings(s.ResonanceReasons)
	}
	if s.CommunitySelections != nil {
		f["communitySelections"] = fsStrings(s.CommunitySelections)
	}
	if segs := s.Segments(); len(segs) > 0 {
		names := make([]string, len(segs))
		for i, seg := range segs {
			names[i] = string(seg)
		}
		f["segments"] = fsStrings(names)
		if a, ok := s.SegmentAnswers[domain.SegmentArtist]; ok {
			f["artistQuestions"] = fsAnswers(a.Answers())
		}
		if c, ok := s.SegmentAnswers[domain.SegmentCommunity]; ok {
			f["communityQuestions"] = fsAnswers(c.Answers())
		}
	}
	return f
}

func (v fsValue) str() string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		return *v.IntegerValue
	}
	return ""
}

func (v fsValue) strings() []string {
	if v.ArrayValue == nil {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue.Values))
	for _, e := range v.ArrayValue.Values {
		out = append(out, e.str())
	}
	return out
}

func (v fsValue) answers() [5]string {
	var a [5]string
	if v.MapValue == nil {
		return a
	}
	for i := range a {
		a[i] = v.MapValue.Fields["q"+strconv.Itoa(i+1)].str()
	}
	return a
}

func decodeSubmission(doc fsDocument) (domain.Submission, error) {
	f := doc.Fields
	s := domain.Submission{
		ID:             doc.Name[strings.LastIndex(doc.Name, "/")+1:],
		UserID:         f["userId"].str(),
		FirstName:      f["firstName"].str(),
		LastName:       f["lastName"].str(),
		Email:          f["email"].str(),
		Phone:          f["phone"].str(),
		Location:       f["location"].str(),
		CreativeWork:   f["creativeWork"].str(),
		BetaTesting:    f["betaTesting"].str(),
		ResonanceLevel: f["resonanceLevel"].str(),
	}
	if s.BetaTesting == "" {
		s.BetaTesting = f["productFeedbackSurvey"].str()
	}
	if _, ok := f["roleTypes"]; ok {
		s.RoleTypes = f["roleTypes"].strings()
	}
	if _, ok := f["resonanceReasons"]; ok {
		s.ResonanceReasons = f["resonanceReasons"].strings()
	}
	if _, ok := f["communitySelections"]; ok {
		s.CommunitySelections = f["communitySelections"].strings()
	}
	if tv := f["timestamp"].TimestampValue; tv != nil {
		ts, err := time.Parse(time.RFC3339Nano, *tv)
		if err != nil {
			return domain.Submission{}, fmt.Errorf("parsing timestamp of %s: %w", s.ID, err)
		}
		s.Timestamp = ts.UTC()
	}
	for _, name := range f["segments"].strings() {
		seg, err := domain.ParseSegment(name)
		if err != nil {
			continue
		}
		if s.SegmentAnswers == nil {
			s.SegmentAnswers = domain.SegmentAnswerSet{}
		}
		switch seg {
		case domain.SegmentArtist:
			a := f["artistQuestions"].answers()
			s.SegmentAnswers[seg] = domain.ArtistAnswers{Q1: a[0], Q2: a[1], Q3: a[2], Q4: a[3], Q5: a[4]}
		case domain.SegmentCommunity:
			c := f["communityQuestions"].answers()
			s.SegmentAnswers[seg] = domain.CommunityAnswers{Q1: c[0], Q2: c[1], Q3: c[2], Q4: c[3], Q5: c[4]}
		}
	}
	return s, nil
}
