package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

func TestImportDraftRepositoryWithoutClient(t *testing.T) {
	repo := NewImportDraftRepository(nil, nil)

	err := repo.Save(context.Background(), &models.ImportDraft{Token: "t"}, time.Minute)
	assert.ErrorIs(t, err, ErrDraftStoreUnavailable)

	_, err = repo.Get(context.Background(), "t")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Delete(context.Background(), "t"))
	require.NoError(t, repo.Close())
	assert.Equal(t, "studypath:import:t", draftKey("t"))
}
