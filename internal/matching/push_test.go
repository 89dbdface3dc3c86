package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawanfarouq/EduRA-sub001/internal/dispatch"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

var goCourse = models.TargetItem{ID: "course-go", Title: "Go Programming", CategoryName: "Software"}

func pushFixture() (*fakeRepo, *fakeEmbedder) {
	repo := newFakeRepo()
	repo.candidates = []models.CandidateProfile{
		{ID: "a", RecipientID: "u-a", Email: "a@example.com", Text: "cv-a"},
		{ID: "b", RecipientID: "u-b", Email: "b@example.com", Text: "cv-b"},
		{ID: "c", RecipientID: "u-c", Email: "c@example.com", Text: "cv-c"},
		{ID: "d", RecipientID: "u-d", Email: "not-an-address", Text: "cv-d"},
	}
	emb := newFakeEmbedder()
	emb.vectors[goCourse.ComposedText()] = []float32{1, 0, 0}
	emb.vectors["cv-a"] = []float32{1, 0, 0}
	emb.vectors["cv-b"] = []float32{0, 1, 0}
	// cv-c has no vector: its embedding call fails.
	emb.vectors["cv-d"] = []float32{0.6, 0.8, 0}
	return repo, emb
}

func TestNotify_QualifiedOnlyAndFailuresExcluded(t *testing.T) {
	repo, emb := pushFixture()
	disp := &recordingDispatcher{}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{Workers: 3}, WithDispatcher(disp))

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "d"}, disp.candidateIDs())
	assert.Equal(t, 2, res.Qualified)
	assert.Equal(t, 2, res.NotifiedCount)
	assert.Equal(t, 1, res.EmailsSent)
	assert.False(t, res.Partial)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "c", res.Excluded[0].ItemID)
	assert.Equal(t, StageEmbed, res.Excluded[0].Stage)
	assert.ErrorIs(t, res.Excluded[0], ErrEmbedding)

	for _, m := range res.Matches {
		assert.GreaterOrEqual(t, m.FinalScore, e.Config().Push.Threshold)
		assert.NotEqual(t, "c", m.CandidateID)
	}

	assert.Contains(t, repo.derived, "a")
	assert.NotContains(t, repo.derived, "c")
}

func TestNotify_TargetEmbeddedOnce(t *testing.T) {
	repo, emb := pushFixture()
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{Workers: 4}, WithDispatcher(&recordingDispatcher{}))

	_, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.callsFor(goCourse.ComposedText()))
	assert.Equal(t, 1, repo.targetSaves[goCourse.ID])

	cached := goCourse
	cached.Embedding = []float32{1, 0, 0}
	_, err = e.NotifyCandidatesForNewTarget(context.Background(), cached)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.callsFor(goCourse.ComposedText()))
}

func TestNotify_TargetEmbeddingFailureAbortsRun(t *testing.T) {
	repo, emb := pushFixture()
	delete(emb.vectors, goCourse.ComposedText())
	disp := &recordingDispatcher{}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(disp))

	_, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.ErrorIs(t, err, ErrTargetEmbedding)
	assert.Empty(t, disp.candidateIDs())
	assert.Zero(t, emb.callsFor("cv-a"))
}

func TestNotify_UsesCachedDerivedData(t *testing.T) {
	repo, emb := pushFixture()
	repo.candidates[0].Expertise = models.Expertise{PrimaryField: "software"}
	repo.candidates[0].Embedding = []float32{1, 0, 0}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(&recordingDispatcher{}))

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)
	assert.Zero(t, emb.callsFor("cv-a"))
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, "a", res.Matches[0].CandidateID)
	assert.InDelta(t, 0.11, res.Matches[0].Boost, 1e-9)
}

func TestNotify_CachedEmbeddingOfWrongDimensionIsRecomputed(t *testing.T) {
	repo, emb := pushFixture()
	repo.candidates[0].Expertise = models.Expertise{PrimaryField: "software"}
	repo.candidates[0].Embedding = []float32{1, 0}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(&recordingDispatcher{}))

	_, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.callsFor("cv-a"))
	assert.Equal(t, []float32{1, 0, 0}, repo.derived["a"])
}

func TestNotify_DocumentFallbackAndUnreadable(t *testing.T) {
	repo, emb := pushFixture()
	repo.candidates = []models.CandidateProfile{
		{ID: "doc", Email: "doc@example.com", Document: &models.Document{Content: []byte("cv-a")}},
		{ID: "blank", Email: "blank@example.com", Document: &models.Document{Content: []byte("unreadable")}},
	}
	disp := &recordingDispatcher{}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(disp))

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc"}, disp.candidateIDs())
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, StageExtract, res.Excluded[0].Stage)
	assert.ErrorIs(t, res.Excluded[0], ErrExtraction)
}

func TestNotify_BudgetYieldsPartialResult(t *testing.T) {
	repo, emb := pushFixture()
	for _, c := range repo.candidates {
		emb.delays[c.Text] = 40 * time.Millisecond
	}
	emb.vectors["cv-c"] = []float32{1, 0, 0}
	target := goCourse
	target.Embedding = []float32{1, 0, 0}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{Workers: 1}, WithDispatcher(&recordingDispatcher{}))

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), target, WithBudget(60*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Less(t, len(res.Matches), len(repo.candidates))
}

func TestNotify_OrderIndependentOfCompletion(t *testing.T) {
	repo := newFakeRepo()
	emb := newFakeEmbedder()
	emb.vectors[goCourse.ComposedText()] = []float32{1, 0, 0}
	ids := []string{"first", "second", "third"}
	for i, id := range ids {
		text := "cv-" + id
		repo.candidates = append(repo.candidates, models.CandidateProfile{ID: id, Text: text})
		emb.vectors[text] = []float32{1, 0, 0}
		emb.delays[text] = time.Duration(len(ids)-i) * 15 * time.Millisecond
	}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{Workers: 3})

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	require.NoError(t, err)
	require.Len(t, res.Matches, 3)
	for i, m := range res.Matches {
		assert.Equal(t, ids[i], m.CandidateID)
	}
	assert.True(t, res.DryRun)
}

func TestNotify_DryRunSkipsDispatch(t *testing.T) {
	repo, emb := pushFixture()
	disp := &recordingDispatcher{}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(disp))

	res, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse, DryRun())
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 2, res.Qualified)
	assert.Zero(t, res.NotifiedCount)
	assert.Empty(t, disp.candidateIDs())
}

func TestNotify_PersistFailureFailsRun(t *testing.T) {
	repo, emb := pushFixture()
	disp := &recordingDispatcher{err: errors.Join(dispatch.ErrPersist, errors.New("disk full"))}
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{}, WithDispatcher(disp))

	_, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	assert.ErrorIs(t, err, dispatch.ErrPersist)
}

func TestNotify_RepositoryFailure(t *testing.T) {
	repo, emb := pushFixture()
	repo.listErr = errors.New("database is locked")
	e := New(repo, plainText{}, fixedExpertise{}, emb, Config{})

	_, err := e.NotifyCandidatesForNewTarget(context.Background(), goCourse)
	assert.ErrorIs(t, err, ErrRepository)
}
