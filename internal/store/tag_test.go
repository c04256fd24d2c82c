package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperflow-app/paperflow/internal/domain"
)

func TestCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, "methodology", strptr("#336699"))
	require.NoError(t, err)
	assert.NotEmpty(t, tag.ID)
	assert.Equal(t, "methodology", tag.Name)
	require.NotNil(t, tag.Color)
	assert.Equal(t, "#336699", *tag.Color)
}

func TestCreateTag_DuplicateNameConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateTag(ctx, "survey", nil)
	require.NoError(t, err)

	_, err = s.CreateTag(ctx, "survey", nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestCreateTag_BlankName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTag(context.Background(), "  ", nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBadRequest, domain.CodeOf(err))
}

func TestTagNote_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	paper := importOnePaper(t, s, writeTestFile(t, "host.pdf", "host content"))
	note := createTestNote(t, s, paper.ID, "taggable")
	tag, err := s.CreateTag(ctx, "followup", nil)
	require.NoError(t, err)

	require.NoError(t, s.TagNote(ctx, note.ID, tag.ID))
	// Re-attaching is a no-op, not an error.
	require.NoError(t, s.TagNote(ctx, note.ID, tag.ID))

	tags, err := s.ListNoteTags(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)

	require.NoError(t, s.UntagNote(ctx, note.ID, tag.ID))
	tags, err = s.ListNoteTags(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagNote_MissingEntities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	paper := importOnePaper(t, s, writeTestFile(t, "host.pdf", "host content"))
	note := createTestNote(t, s, paper.ID, "taggable")

	err := s.TagNote(ctx, "ghost", "whatever")
	assert.True(t, domain.IsNotFound(err))

	err = s.TagNote(ctx, note.ID, "ghost-tag")
	assert.True(t, domain.IsNotFound(err))
}

func TestUntagNote_AbsentAssociation(t *testing.T) {
	s := newTestStore(t)

	err := s.UntagNote(context.Background(), "note", "tag")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteTag_CascadesAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	paper := importOnePaper(t, s, writeTestFile(t, "host.pdf", "host content"))
	note := createTestNote(t, s, paper.ID, "taggable")
	tag, err := s.CreateTag(ctx, "transient", nil)
	require.NoError(t, err)
	require.NoError(t, s.TagNote(ctx, note.ID, tag.ID))

	require.NoError(t, s.DeleteTag(ctx, tag.ID))

	tags, err := s.ListNoteTags(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDeleteTag_Missing(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteTag(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestListTags_OrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.CreateTag(ctx, name, nil)
		require.NoError(t, err)
	}

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "mid", tags[1].Name)
	assert.Equal(t, "zeta", tags[2].Name)
}
