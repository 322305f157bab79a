package curated

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Relation buckets of the curated file.
const (
	BucketTreatments = "treatments"
	BucketCauses     = "causes"
	BucketSymptoms   = "symptoms"
	BucketRelatedTo  = "related_to"
)

// Buckets lists the valid bucket names.
var Buckets = []string{BucketTreatments, BucketCauses, BucketSymptoms, BucketRelatedTo}

// MinTargetLength is the shortest accepted entity or target name.
const MinTargetLength = 2

// ErrInvalidRecords is returned by Validate.
var ErrInvalidRecords = errors.New("curated: invalid records")

// Records maps entity -> bucket -> related entities.
type Records map[string]map[string][]string

// Entities returns the entity names in sorted order.
func (r Records) Entities() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Facts counts (entity, bucket, target) entries.
func (r Records) Facts() int {
	n := 0
	for _, buckets := range r {
		for _, targets := range buckets {
			n += len(targets)
		}
	}
	return n
}

// Validate checks the file contract: known buckets, no empty bucket lists,
// no duplicates, and names of at least MinTargetLength characters.
func (r Records) Validate() error {
	for entity, buckets := range r {
		if utf8.RuneCountInString(strings.TrimSpace(entity)) < MinTargetLength {
			return fmt.Errorf("%w: entity %q too short", ErrInvalidRecords, entity)
		}
		if len(buckets) == 0 {
			return fmt.Errorf("%w: entity %q has no buckets", ErrInvalidRecords, entity)
		}
		for bucket, targets := range buckets {
			if !slices.Contains(Buckets, bucket) {
				return fmt.Errorf("%w: entity %q has unknown bucket %q", ErrInvalidRecords, entity, bucket)
			}
			if len(targets) == 0 {
				return fmt.Errorf("%w: entity %q has empty bucket %q", ErrInvalidRecords, entity, bucket)
			}
			seen := make(map[string]struct{}, len(targets))
			for _, t := range targets {
				if utf8.RuneCountInString(t) < MinTargetLength {
					return fmt.Errorf("%w: entity %q bucket %q has short target %q", ErrInvalidRecords, entity, bucket, t)
				}
				if _, dup := seen[t]; dup {
					return fmt.Errorf("%w: entity %q bucket %q repeats %q", ErrInvalidRecords, entity, bucket, t)
				}
				seen[t] = struct{}{}
			}
		}
	}
	return nil
}

// ReadFile loads and validates a curated relation file.
func ReadFile(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curated file: %w", err)
	}
	var recs Records
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse curated file %s: %w", path, err)
	}
	if err := recs.Validate(); err != nil {
		return nil, fmt.Errorf("curated file %s: %w", path, err)
	}
	return recs, nil
}

// WriteFile validates recs and writes them as indented JSON, replacing path
// atomically.
func WriteFile(path string, recs Records) error {
	if err := recs.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode curated records: %w", err)
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write curated file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write curated file: %w", err)
	}
	return nil
}
