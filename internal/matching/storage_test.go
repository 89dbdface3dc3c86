package matching

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/storage"
)

func TestNotify_CorruptCachedTutorIsRederived(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edura.db")
	store, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	course := goCourse
	require.NoError(t, store.UpsertTarget(ctx, &course))
	exp := models.Expertise{PrimaryField: "Software", RelatedFields: []string{}, Keywords: []string{}}
	for _, id := range []string{"good", "bad"} {
		require.NoError(t, store.UpsertCandidate(ctx, &models.CandidateProfile{ID: id, Text: "cv-" + id}))
		require.NoError(t, store.SaveCandidateDerived(ctx, id, exp, []float32{1, 0, 0}))
	}
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, "UPDATE tutors SET embedding = x'010203' WHERE id = 'bad'")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	emb := newFakeEmbedder()
	emb.vectors[goCourse.ComposedText()] = []float32{1, 0, 0}
	emb.vectors["cv-bad"] = []float32{1, 0, 0}
	disp := &recordingDispatcher{}
	e := New(store, plainText{}, fixedExpertise{"cv-bad": exp}, emb, Config{Workers: 2}, WithDispatcher(disp))

	res, err := e.NotifyCandidatesForNewTarget(ctx, goCourse)
	require.NoError(t, err)
	assert.Empty(t, res.Excluded)
	assert.ElementsMatch(t, []string{"good", "bad"}, disp.candidateIDs())
	assert.Equal(t, 0, emb.callsFor("cv-good"), "readable cache is reused")
	assert.Equal(t, 1, emb.callsFor("cv-bad"))

	bad, err := store.GetCandidate(ctx, "bad")
	require.NoError(t, err)
	assert.True(t, bad.HasDerived())
	assert.Equal(t, []float32{1, 0, 0}, bad.Embedding)
}
