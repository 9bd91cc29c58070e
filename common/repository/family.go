package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/models"
)

// FamilyRepository reads the family records owned by the CRUD layer
type FamilyRepository struct {
	db *db.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(database *db.DB) *FamilyRepository {
	return &FamilyRepository{db: database}
}

// LoadSnapshot reads every person, marriage and parent link in one
// repeatable-read transaction so the graph is built from a consistent view
func (r *FamilyRepository) LoadSnapshot(ctx context.Context) (*models.FamilySnapshot, error) {
	snap := &models.FamilySnapshot{}

	err := r.db.WithSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		if snap.Persons, err = loadPersons(ctx, tx); err != nil {
			return err
		}
		if snap.Marriages, err = loadMarriages(ctx, tx); err != nil {
			return err
		}
		snap.Links, err = loadLinks(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func loadPersons(ctx context.Context, tx pgx.Tx) ([]models.Person, error) {
	query := `
		SELECT id, full_name, gender, generation, is_root
		FROM persons
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var (
			p      models.Person
			gender string
		)
		if err := rows.Scan(&p.ID, &p.FullName, &gender, &p.Generation, &p.IsRoot); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.Gender = models.Gender(gender)
		persons = append(persons, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}

	return persons, nil
}

func loadMarriages(ctx context.Context, tx pgx.Tx) ([]models.Marriage, error) {
	query := `
		SELECT id, husband_id, wife_id, marriage_date, divorce_date
		FROM marriages
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load marriages: %w", err)
	}
	defer rows.Close()

	var marriages []models.Marriage
	for rows.Next() {
		var m models.Marriage
		if err := rows.Scan(&m.ID, &m.HusbandID, &m.WifeID, &m.StartedOn, &m.EndedOn); err != nil {
			return nil, fmt.Errorf("failed to scan marriage: %w", err)
		}
		marriages = append(marriages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating marriages: %w", err)
	}

	return marriages, nil
}

func loadLinks(ctx context.Context, tx pgx.Tx) ([]models.ParentChild, error) {
	query := `
		SELECT id, marriage_id, child_id, COALESCE(birth_order, 0)
		FROM parent_child
		ORDER BY child_id, birth_order, id
	`

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent links: %w", err)
	}
	defer rows.Close()

	var links []models.ParentChild
	for rows.Next() {
		var l models.ParentChild
		if err := rows.Scan(&l.ID, &l.MarriageID, &l.ChildID, &l.BirthOrder); err != nil {
			return nil, fmt.Errorf("failed to scan parent link: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent links: %w", err)
	}

	return links, nil
}

// UpdateGenerations writes generation numbers (nil clears the column) in a
// single transaction
func (r *FamilyRepository) UpdateGenerations(ctx context.Context, generations map[int64]*int) error {
	if len(generations) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for id, gen := range generations {
			batch.Queue(`UPDATE persons SET generation = $2 WHERE id = $1`, id, gen)
		}

		br := tx.SendBatch(ctx, batch)
		for range generations {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to update generation: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to update generations: %w", err)
		}
		return nil
	})
}
