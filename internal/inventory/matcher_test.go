package inventory

import (
	"context"
	"errors"
	"testing"

	"ticketcrm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	records  map[string]Record
	failWith error
	listed   int
}

func (f *fakeStore) FindByFormID(_ context.Context, formID string) (Record, bool, error) {
	if f.failWith != nil {
		return Record{}, false, f.failWith
	}
	rec, ok := f.records[formID]
	return rec, ok, nil
}

func (f *fakeStore) ListFormMappings(context.Context) ([]FormMapping, error) {
	f.listed++
	return []FormMapping{{EventName: "Grand Prix VIP", FormIDs: []string{"F1"}}}, nil
}

func newTestMatcher(store Store) *Matcher {
	return NewMatcher(store, logger.New("development"))
}

func TestLookupReturnsFirstStructuredCategory(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{records: map[string]Record{
		"F1": {
			ID:             id,
			EventName:      "Grand Prix VIP",
			Categories:     []Category{{Name: "VIP"}, {Name: "General"}},
			LegacyCategory: "Old",
		},
	}}

	match := newTestMatcher(store).Lookup(context.Background(), "F1")

	if !match.Matched {
		t.Fatal("expected a match")
	}
	if match.InventoryID == nil || *match.InventoryID != id {
		t.Fatalf("expected inventory id %s, got %v", id, match.InventoryID)
	}
	if match.CategoryName == nil || *match.CategoryName != "VIP" {
		t.Fatalf("expected first category VIP, got %v", match.CategoryName)
	}
}

func TestLookupFallsBackToLegacyCategory(t *testing.T) {
	store := &fakeStore{records: map[string]Record{
		"F2": {ID: uuid.New(), EventName: "Derby", LegacyCategory: "Gold"},
	}}

	match := newTestMatcher(store).Lookup(context.Background(), "F2")

	if match.CategoryName == nil || *match.CategoryName != "Gold" {
		t.Fatalf("expected legacy category Gold, got %v", match.CategoryName)
	}
}

func TestLookupMissIsNonFatalAndEmitsDiagnostic(t *testing.T) {
	store := &fakeStore{records: map[string]Record{}}

	match := newTestMatcher(store).Lookup(context.Background(), "unknown")

	if match.Matched {
		t.Fatal("expected no match")
	}
	if match.InventoryID != nil || match.CategoryName != nil {
		t.Fatal("unmatched lookup must leave inventory fields nil")
	}
	if store.listed != 1 {
		t.Fatalf("expected one diagnostic mapping listing, got %d", store.listed)
	}
}

func TestLookupStoreErrorDegradesToNoMatch(t *testing.T) {
	store := &fakeStore{failWith: errors.New("connection refused")}

	match := newTestMatcher(store).Lookup(context.Background(), "F1")

	if match.Matched {
		t.Fatal("store failure must degrade to no match, not error out")
	}
}

func TestDecodeCategoriesMalformedDegrades(t *testing.T) {
	if cats := decodeCategories([]byte("{not json")); cats != nil {
		t.Fatalf("expected nil for malformed categories, got %v", cats)
	}
	cats := decodeCategories([]byte(`[{"name":"VIP"}]`))
	if len(cats) != 1 || cats[0].Name != "VIP" {
		t.Fatalf("expected single VIP category, got %v", cats)
	}
}
