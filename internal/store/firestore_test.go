package store

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFirestore implements the handful of REST calls the repository makes.
type fakeFirestore struct {
	mu    sync.Mutex
	docs  map[string]fsDocument
	posts int
}

const docsPath = "/projects/kyozo-test/databases/(default)/documents"

func (f *fakeFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == docsPath+":runQuery":
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"DESCENDING"`) {
			http.Error(w, "expected descending order", http.StatusBadRequest)
			return
		}
		docs := make([]fsDocument, 0, len(f.docs))
		for _, d := range f.docs {
			docs = append(docs, d)
		}
		sort.Slice(docs, func(i, j int) bool {
			ti, _ := time.Parse(time.RFC3339Nano, *docs[i].Fields["timestamp"].TimestampValue)
			tj, _ := time.Parse(time.RFC3339Nano, *docs[j].Fields["timestamp"].TimestampValue)
			return ti.After(tj)
		})
		out := []map[string]any{{"readTime": time.Now().Format(time.RFC3339)}}
		if len(docs) > 0 {
			out = nil
			for _, d := range docs {
				out = append(out, map[string]any{"document": d})
			}
		}
		json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodPost && r.URL.Path == docsPath+"/waitlist":
		f.posts++
		id := r.URL.Query().Get("documentId")
		if _, ok := f.docs[id]; ok {
			w.WriteHeader(http.StatusConflict)
			return
		}
		var doc fsDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		doc.Name = docsPath + "/waitlist/" + id
		f.docs[id] = doc
		json.NewEncoder(w).Encode(doc)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, docsPath+"/waitlist/"):
		if r.URL.Query().Get("currentDocument.exists") != "true" {
			http.Error(w, "missing precondition", http.StatusBadRequest)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, docsPath+"/waitlist/")
		if _, ok := f.docs[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.docs, id)
		w.Write([]byte("{}"))

	case r.Method == http.MethodGet && r.URL.Path == docsPath+"/waitlist":
		w.Write([]byte(`{"documents":[]}`))

	default:
		http.NotFound(w, r)
	}
}

func newFirestoreTestRepo(t *testing.T) (*FirestoreRepository, *fakeFirestore) {
	t.Helper()
	fake := &fakeFirestore{docs: make(map[string]fsDocument)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewFirestoreRepositoryWithClient(server.URL, "kyozo-test", "waitlist", server.Client()), fake
}

func TestFirestoreRepository(t *testing.T) {
	repo, _ := newFirestoreTestRepo(t)
	exerciseRepository(t, repo)
}

func TestFirestoreRepository_LegacyDocumentShape(t *testing.T) {
	fields := encodeSubmission(sarahChen())

	assert.Equal(t, "yes", *fields["productFeedbackSurvey"].StringValue)
	require.NotNil(t, fields["artistQuestions"].MapValue)
	assert.Equal(t, "installations", *fields["artistQuestions"].MapValue.Fields["q1"].StringValue)
	assert.NotContains(t, fields, "communityQuestions")

	// Older documents only carry productFeedbackSurvey and may hold an
	// integer resonance level.
	delete(fields, "betaTesting")
	lvl := "4"
	fields["resonanceLevel"] = fsValue{IntegerValue: &lvl}
	sub, err := decodeSubmission(fsDocument{Name: docsPath + "/waitlist/legacy-1", Fields: fields})
	require.NoError(t, err)
	assert.Equal(t, "legacy-1", sub.ID)
	assert.Equal(t, "yes", sub.BetaTesting)
	assert.Equal(t, "4", sub.ResonanceLevel)
}

func TestFirestoreRepository_EmptyCollection(t *testing.T) {
	repo, _ := newFirestoreTestRepo(t)
	list, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}
