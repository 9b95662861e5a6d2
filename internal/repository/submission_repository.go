package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/internal/storage"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"go.uber.org/zap"
)

// DefaultSubmissionsKey is the store key holding the submissions collection
const DefaultSubmissionsKey = "feedback_submissions"

// SubmissionRepository keeps every confirmed form as one JSON array under a single key.
//
// Appends are read-modify-write. The mutex serialises them inside this process only;
// two processes sharing one backend can still lose each other's writes.
type SubmissionRepository struct {
	kv  storage.KV
	key string
	mu  sync.Mutex
}

// NewSubmissionRepository creates a repository over kv. An empty key selects DefaultSubmissionsKey.
func NewSubmissionRepository(kv storage.KV, key string) *SubmissionRepository {
	if key == "" {
		key = DefaultSubmissionsKey
	}
	return &SubmissionRepository{
		kv:  kv,
		key: key,
	}
}

// Append implements feedback.Recorder
func (r *SubmissionRepository) Append(ctx context.Context, record feedback.FormState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode submissions: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to store submissions: %w", err)
	}
	return nil
}

// List returns every stored submission
func (r *SubmissionRepository) List(ctx context.Context) ([]feedback.FormState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// load reads the collection; a missing or unparseable value counts as empty
func (r *SubmissionRepository) load(ctx context.Context) ([]feedback.FormState, error) {
	data, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	if !found || len(data) == 0 {
		return []feedback.FormState{}, nil
	}

	var records []feedback.FormState
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Discarding unparseable submissions collection",
			zap.String("key", r.key),
			zap.Int("size_bytes", len(data)),
			zap.Error(err))
		return []feedback.FormState{}, nil
	}
	if records == nil {
		// stored literal null
		records = []feedback.FormState{}
	}
	return records, nil
}
