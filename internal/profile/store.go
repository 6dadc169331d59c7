package profile

import (
	"context"
	"fmt"
)

// ErrQuotaExceeded is reported by stores whose backing storage rejected the
// full record. Savers degrade to a trimmed subset rather than fail.
var ErrQuotaExceeded = fmt.Errorf("profile store quota exceeded")

// Store is the durable get/set boundary for the profile record. It must
// tolerate absent data (an empty record applies).
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// SaveDegrading saves rec, retrying once with a quota-trimmed copy when the
// store signals quota exhaustion.
func SaveDegrading(ctx context.Context, store Store, rec *Record) error {
	err := store.Save(ctx, rec)
	if err == nil {
		return nil
	}
	if err != ErrQuotaExceeded {
		return err
	}
	trimmed := rec.TrimForQuota()
	return store.Save(ctx, trimmed)
}

// maxTrimmedAnswers caps how many custom answers survive quota degradation.
const maxTrimmedAnswers = 50

// TrimForQuota returns a copy of the record shrunk for quota-limited
// storage: long custom answers dropped first, then the map capped. The
// structured attributes always survive.
func (r *Record) TrimForQuota() *Record {
	trimmed := *r
	trimmed.CustomAnswers = make(map[string]string, len(r.CustomAnswers))

	kept := 0
	for k, v := range r.CustomAnswers {
		if len(v) > 500 {
			continue
		}
		if kept >= maxTrimmedAnswers {
			break
		}
		trimmed.CustomAnswers[k] = v
		kept++
	}
	return &trimmed
}

// MemoryStore is the in-process Store used by tests and the CLI. A Quota
// byte limit, when positive, makes Save behave like a quota-limited host.
type MemoryStore struct {
	rec   *Record
	Quota int
}

// NewMemoryStore returns a store seeded with rec (nil for an empty profile).
func NewMemoryStore(rec *Record) *MemoryStore {
	return &MemoryStore{rec: rec}
}

// Load returns a copy of the stored record, or an empty record when absent.
func (s *MemoryStore) Load(_ context.Context) (*Record, error) {
	if s.rec == nil {
		return &Record{}, nil
	}
	cp := *s.rec
	cp.CustomAnswers = copyMap(s.rec.CustomAnswers)
	cp.LearnedMappings = copyTypedMap(s.rec.LearnedMappings)
	return &cp, nil
}

// Save stores a copy of rec, honoring the configured quota.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if s.Quota > 0 && approximateSize(rec) > s.Quota {
		return ErrQuotaExceeded
	}
	cp := *rec
	cp.CustomAnswers = copyMap(rec.CustomAnswers)
	cp.LearnedMappings = copyTypedMap(rec.LearnedMappings)
	s.rec = &cp
	return nil
}

func approximateSize(rec *Record) int {
	size := 0
	for k, v := range rec.CustomAnswers {
		size += len(k) + len(v)
	}
	for k := range rec.LearnedMappings {
		size += len(k)
	}
	return size
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyTypedMap[T ~string](m map[string]T) map[string]T {
	if m == nil {
		return nil
	}
	cp := make(map[string]T, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
