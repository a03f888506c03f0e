package ioidentity_test

import (
	"context"
	"testing"

	"github.com/chairside/r4sync/internal/ioidentity"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memMappings is an in-memory MappingStore.
type memMappings struct {
	manual map[int]*schema.ManualPatientMapping
	auto   map[int]*schema.PatientMapping
}

func newMemMappings() *memMappings {
	return &memMappings{
		manual: make(map[int]*schema.ManualPatientMapping),
		auto:   make(map[int]*schema.PatientMapping),
	}
}

func (s *memMappings) ManualByCode(
	_ context.Context, _ string, code int,
) (*schema.ManualPatientMapping, error) {
	return s.manual[code], nil
}

func (s *memMappings) AutoByCode(
	_ context.Context, _ string, code int,
) (*schema.PatientMapping, error) {
	return s.auto[code], nil
}

func (s *memMappings) UpsertAuto(
	_ context.Context, m *schema.PatientMapping,
) error {
	if _, ok := s.auto[m.LegacyPatientCode]; ok {
		return nil
	}
	s.auto[m.LegacyPatientCode] = m
	return nil
}

func (s *memMappings) addManual(code int, patientID string) {
	c := code
	s.manual[code] = &schema.ManualPatientMapping{
		Source:            "r4",
		LegacyPatientCode: &c,
		PatientID:         patientID,
	}
}

func (s *memMappings) addAuto(code int, patientID string) {
	s.auto[code] = &schema.PatientMapping{
		Source:            "r4",
		LegacyPatientCode: code,
		PatientID:         patientID,
	}
}

func TestResolveAutoMapping(t *testing.T) {
	store := newMemMappings()
	store.addAuto(42, "uuid-auto")
	r := ioidentity.NewResolver(store, nil, "r4")

	id, ok, err := r.Resolve(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uuid-auto", id)
}

func TestResolveMiss(t *testing.T) {
	r := ioidentity.NewResolver(newMemMappings(), nil, "r4")

	_, ok, err := r.Resolve(context.Background(), 42)
	require.NoError(t, err, "a plain miss is not an error")
	assert.False(t, ok)
}

// A manual override coexisting with an automatic mapping for the same
// code always wins.
func TestResolveManualOverridesAuto(t *testing.T) {
	store := newMemMappings()
	store.addAuto(42, "uuid-9")
	store.addManual(42, "uuid-7")
	r := ioidentity.NewResolver(store, nil, "r4")

	id, ok, err := r.Resolve(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uuid-7", id)
}

type recordingImporter struct {
	store *memMappings
	calls []int
	fail  error
}

func (i *recordingImporter) ImportPatient(_ context.Context, code int) error {
	i.calls = append(i.calls, code)
	if i.fail != nil {
		return i.fail
	}
	i.store.addAuto(code, "uuid-imported")
	return nil
}

func TestEnsureMappingKnownCode(t *testing.T) {
	store := newMemMappings()
	store.addAuto(42, "uuid-auto")
	imp := &recordingImporter{store: store}
	r := ioidentity.NewResolver(store, imp, "r4")

	id, ok, err := r.EnsureMapping(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uuid-auto", id)
	assert.Empty(t, imp.calls, "no scoped import for a known code")
}

// An unknown code triggers a scoped single-patient import and a
// re-check; the mapping produced by the import is returned.
func TestEnsureMappingRunsScopedImport(t *testing.T) {
	store := newMemMappings()
	imp := &recordingImporter{store: store}
	r := ioidentity.NewResolver(store, imp, "r4")

	id, ok, err := r.EnsureMapping(context.Background(), 55)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uuid-imported", id)
	assert.Equal(t, []int{55}, imp.calls)
}

// The code can stay unresolved even after the scoped import, e.g. when
// the patient does not exist in the source either.
func TestEnsureMappingStillUnresolved(t *testing.T) {
	store := newMemMappings()
	imp := &recordingImporter{store: newMemMappings()} // writes elsewhere
	r := ioidentity.NewResolver(store, imp, "r4")

	_, ok, err := r.EnsureMapping(context.Background(), 55)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{55}, imp.calls)
}

func TestEnsureMappingImportFailure(t *testing.T) {
	store := newMemMappings()
	imp := &recordingImporter{store: store, fail: assert.AnError}
	r := ioidentity.NewResolver(store, imp, "r4")

	_, ok, err := r.EnsureMapping(context.Background(), 55)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEnsureMappingWithoutScopedImporter(t *testing.T) {
	r := ioidentity.NewResolver(newMemMappings(), nil, "r4")

	_, ok, err := r.EnsureMapping(context.Background(), 55)
	require.NoError(t, err, "degrades to a plain resolve")
	assert.False(t, ok)
}

// Patient ids are pure functions of identity inputs, so re-import
// cannot mint a second id for the same person.
func TestPatientID(t *testing.T) {
	withKey := ioidentity.PatientID("r4", "PK-1001", 1001)
	assert.Equal(t, withKey, ioidentity.PatientID("r4", "PK-1001", 1001))

	// The person key dominates: the code does not participate when a
	// key is present.
	assert.Equal(t, withKey, ioidentity.PatientID("r4", "PK-1001", 9999))

	withoutKey := ioidentity.PatientID("r4", "", 1001)
	assert.Equal(t, withoutKey, ioidentity.PatientID("r4", "", 1001))
	assert.NotEqual(t, withKey, withoutKey)
	assert.NotEqual(t, withoutKey, ioidentity.PatientID("r4", "", 1002))
	assert.NotEqual(t, withoutKey, ioidentity.PatientID("legacy2", "", 1001))
}
