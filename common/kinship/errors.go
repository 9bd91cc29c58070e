package kinship

import (
	"errors"
	"fmt"

	"github.com/juruladenbam/bam-sub001/common/logger"
)

// ErrPersonNotFound is returned when a requested endpoint does not exist
var ErrPersonNotFound = errors.New("person not found")

// PersonNotFoundError names the missing person
type PersonNotFoundError struct {
	ID int64
}

func (e *PersonNotFoundError) Error() string {
	return fmt.Sprintf("person %d not found", e.ID)
}

func (e *PersonNotFoundError) Unwrap() error {
	return ErrPersonNotFound
}

// AnomalyKind classifies structural problems in the recorded data
type AnomalyKind string

const (
	AnomalyAmbiguousParentage AnomalyKind = "ambiguous_parentage"
	AnomalyGenerationConflict AnomalyKind = "generation_conflict"
	AnomalyLineageCycle       AnomalyKind = "lineage_cycle"
	AnomalyDanglingLink       AnomalyKind = "dangling_link"
	AnomalyMultipleRoots      AnomalyKind = "multiple_roots"
)

// Anomaly is a data-integrity problem that was resolved locally.
// Anomalies are logged, never returned as errors.
type Anomaly struct {
	Kind       AnomalyKind
	PersonID   int64
	MarriageID int64
	Detail     string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s person=%d marriage=%d: %s", a.Kind, a.PersonID, a.MarriageID, a.Detail)
}

func logAnomalies(log *logger.Logger, anomalies []Anomaly) {
	for _, a := range anomalies {
		anomaliesTotal.WithLabelValues(string(a.Kind)).Inc()
		if log == nil {
			continue
		}
		log.WithAnomaly(string(a.Kind), a.PersonID, a.MarriageID).Warn("family data anomaly", "detail", a.Detail)
	}
}
