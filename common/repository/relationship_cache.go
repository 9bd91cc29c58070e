package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/kinship"
	"github.com/juruladenbam/bam-sub001/common/models"
)

const relationshipCacheSchema = `
	CREATE TABLE IF NOT EXISTS relationship_cache (
		person_a_id        BIGINT      NOT NULL,
		person_b_id        BIGINT      NOT NULL,
		relationship_label TEXT        NOT NULL,
		inverse_label      TEXT        NOT NULL,
		category           TEXT        NOT NULL,
		inverse_category   TEXT        NOT NULL,
		degree_a           INT,
		degree_b           INT,
		lca_id             BIGINT,
		bridge_spouse_id   BIGINT,
		path               JSONB       NOT NULL DEFAULT '[]',
		path_text          TEXT        NOT NULL DEFAULT '',
		computed_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (person_a_id, person_b_id),
		CHECK (person_a_id < person_b_id)
	);
	CREATE INDEX IF NOT EXISTS relationship_cache_person_b_idx ON relationship_cache (person_b_id);
`

// RelationshipCacheRepository stores computed relationships.
// Rows are append-only: a stale row is deleted, never updated.
type RelationshipCacheRepository struct {
	db *db.DB
}

// NewRelationshipCacheRepository creates a new relationship cache repository
func NewRelationshipCacheRepository(database *db.DB) *RelationshipCacheRepository {
	return &RelationshipCacheRepository{db: database}
}

var _ kinship.ResultStore = (*RelationshipCacheRepository)(nil)

// EnsureSchema creates the relationship_cache table if it is missing
func (r *RelationshipCacheRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, relationshipCacheSchema); err != nil {
		return fmt.Errorf("failed to ensure relationship_cache schema: %w", err)
	}
	return nil
}

// Get retrieves the row for a canonical pair
func (r *RelationshipCacheRepository) Get(ctx context.Context, key kinship.PairKey) (*models.RelationshipRecord, bool, error) {
	query := `
		SELECT person_a_id, person_b_id, relationship_label, inverse_label, category, inverse_category,
		       degree_a, degree_b, lca_id, bridge_spouse_id, path, computed_at
		FROM relationship_cache
		WHERE person_a_id = $1 AND person_b_id = $2
	`

	rec := &models.RelationshipRecord{}
	var path []byte
	err := r.db.QueryRow(ctx, query, key.Low, key.High).Scan(
		&rec.PersonLowID,
		&rec.PersonHighID,
		&rec.Label,
		&rec.InverseLabel,
		&rec.Category,
		&rec.InverseCategory,
		&rec.DegreeLow,
		&rec.DegreeHigh,
		&rec.LCAID,
		&rec.BridgeSpouseID,
		&path,
		&rec.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get relationship: %w", err)
	}

	if err := json.Unmarshal(path, &rec.Path); err != nil {
		return nil, false, fmt.Errorf("failed to decode relationship path: %w", err)
	}

	return rec, true, nil
}

// Put inserts a row; an existing row for the pair is left untouched
func (r *RelationshipCacheRepository) Put(ctx context.Context, rec *models.RelationshipRecord) error {
	query := `
		INSERT INTO relationship_cache (
			person_a_id, person_b_id, relationship_label, inverse_label, category, inverse_category,
			degree_a, degree_b, lca_id, bridge_spouse_id, path, path_text, computed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (person_a_id, person_b_id) DO NOTHING
	`

	path, err := json.Marshal(rec.Path)
	if err != nil {
		return fmt.Errorf("failed to encode relationship path: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		rec.PersonLowID,
		rec.PersonHighID,
		rec.Label,
		rec.InverseLabel,
		rec.Category,
		rec.InverseCategory,
		rec.DegreeLow,
		rec.DegreeHigh,
		rec.LCAID,
		rec.BridgeSpouseID,
		path,
		models.PathText(rec.Path),
		rec.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store relationship: %w", err)
	}

	return nil
}

// DeleteInvolving removes every row where either endpoint is in personIDs
func (r *RelationshipCacheRepository) DeleteInvolving(ctx context.Context, personIDs []int64) (int64, error) {
	query := `
		DELETE FROM relationship_cache
		WHERE person_a_id = ANY($1) OR person_b_id = ANY($1)
	`

	tag, err := r.db.Exec(ctx, query, personIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete relationships: %w", err)
	}

	return tag.RowsAffected(), nil
}
