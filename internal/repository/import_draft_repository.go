package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

const importDraftPrefix = "studypath:import:"

// ErrDraftStoreUnavailable is returned when no Redis client is configured.
var ErrDraftStoreUnavailable = appErrors.Clone(appErrors.ErrUnavailable, "import draft store unavailable")

// ImportDraftRepository keeps pending imports in Redis until they are
// confirmed or expire.
type ImportDraftRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewImportDraftRepository constructs a draft repository.
func NewImportDraftRepository(client *redis.Client, logger *zap.Logger) *ImportDraftRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportDraftRepository{client: client, logger: logger}
}

func draftKey(token string) string {
	return importDraftPrefix + token
}

// Save stores draft for ttl.
func (r *ImportDraftRepository) Save(ctx context.Context, draft *models.ImportDraft, ttl time.Duration) error {
	if r.client == nil {
		return ErrDraftStoreUnavailable
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal import draft %s: %w", draft.Token, err)
	}

	if err := r.client.Set(ctx, draftKey(draft.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", draftKey(draft.Token), err)
	}
	return nil
}

// Get loads a draft. Unknown or expired tokens yield appErrors.ErrCacheMiss.
func (r *ImportDraftRepository) Get(ctx context.Context, token string) (*models.ImportDraft, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, draftKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", draftKey(token), err)
	}

	var draft models.ImportDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal import draft %s: %w", token, err)
	}
	return &draft, nil
}

// Delete removes a draft; missing drafts are not an error.
func (r *ImportDraftRepository) Delete(ctx context.Context, token string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, draftKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", draftKey(token), err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *ImportDraftRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
