package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyozo/waitlist/internal/domain"
)

func sarahChen() *domain.Submission {
	return &domain.Submission{
		UserID:              "anon-sarah",
		FirstName:           "Sarah",
		LastName:            "Chen",
		Email:               "sarah.chen@example.com",
		Phone:               "+1 415 555 0134",
		Location:            "San Francisco, US",
		RoleTypes:           []string{"artist-musician-performer", "catalyst"},
		CreativeWork:        "Mixed-media installations",
		BetaTesting:         domain.BetaYes,
		ResonanceLevel:      "5",
		ResonanceReasons:    []string{"control", "freedom"},
		CommunitySelections: []string{"asia"},
		SegmentAnswers: domain.SegmentAnswerSet{
			domain.SegmentArtist: domain.ArtistAnswers{Q1: "installations", Q3: "weekly"},
		},
	}
}

// exerciseRepository checks the contract every adapter shares.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	in := sarahChen()
	want := *in.Clone()

	id, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, in.ID)
	assert.False(t, in.Timestamp.IsZero())

	time.Sleep(2 * time.Millisecond)
	second := &domain.Submission{UserID: "anon-2", FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"}
	id2, err := repo.Create(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID, "newest first")
	assert.Equal(t, id, list[1].ID)

	got := list[1]
	assert.False(t, got.Timestamp.IsZero())
	got.ID, got.Timestamp = "", time.Time{}
	assert.Equal(t, want, got, "every client field round-trips verbatim")

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, ""), ErrMissingID)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id2, list[0].ID)

	assert.NoError(t, repo.Ping(ctx))
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_CreateDoesNotAliasCaller(t *testing.T) {
	repo := NewMemoryRepository()
	sub := sarahChen()
	_, err := repo.Create(context.Background(), sub)
	require.NoError(t, err)

	sub.RoleTypes[0] = "changed"
	list, _ := repo.List(context.Background())
	assert.Equal(t, "artist-musician-performer", list[0].RoleTypes[0])
}
