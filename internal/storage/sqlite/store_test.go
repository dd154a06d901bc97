package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func storeContact(t *testing.T, s *Store, id, name string, gender types.Gender) {
	t.Helper()
	err := s.StoreContact(context.Background(), &types.Contact{
		ID:     id,
		Name:   name,
		Gender: gender,
	})
	if err != nil {
		t.Fatalf("Failed to store contact %s: %v", id, err)
	}
}

// testPair builds both directions of a pair sharing a pair identity.
func testPair(id, a, b, forward, reverse string, cat types.Category, created time.Time) (*types.RelationshipEdge, *types.RelationshipEdge) {
	f := &types.RelationshipEdge{
		ID:         "rel:" + id + ":f",
		PairID:     "pair:" + id,
		ContactAID: a,
		ContactBID: b,
		Type:       forward,
		Category:   cat,
		Status:     types.StatusActive,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	r := &types.RelationshipEdge{
		ID:         "rel:" + id + ":r",
		PairID:     "pair:" + id,
		ContactAID: b,
		ContactBID: a,
		Type:       reverse,
		Category:   cat,
		Status:     types.StatusActive,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	return f, r
}

func TestStoreContact_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contact := &types.Contact{
		ID:      "contact:ann",
		Name:    "Ann",
		Gender:  types.GenderFemale,
		Company: "Initech",
		Email:   "ann@example.com",
	}
	if err := store.StoreContact(ctx, contact); err != nil {
		t.Fatalf("StoreContact failed: %v", err)
	}

	got, err := store.GetContact(ctx, "contact:ann")
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if got.Name != "Ann" || got.Gender != types.GenderFemale || got.Company != "Initech" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
}

func TestStoreContact_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	storeContact(t, store, "contact:ann", "Ann", types.GenderUnknown)
	storeContact(t, store, "contact:ann", "Ann Chen", types.GenderFemale)

	got, err := store.GetContact(ctx, "contact:ann")
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if got.Name != "Ann Chen" || got.Gender != types.GenderFemale {
		t.Errorf("upsert did not replace fields: %+v", got)
	}

	result, err := store.ListContacts(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("upsert created a duplicate row: total=%d", result.Total)
	}
}

func TestStoreContact_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreContact(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil contact: got %v, want ErrInvalidInput", err)
	}
	if err := store.StoreContact(ctx, &types.Contact{Name: "No ID"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing ID: got %v, want ErrInvalidInput", err)
	}
	if err := store.StoreContact(ctx, &types.Contact{ID: "contact:x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing name: got %v, want ErrInvalidInput", err)
	}
}

func TestGetContact_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetContact(context.Background(), "contact:ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListContacts_PaginationAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.StoreContact(ctx, &types.Contact{
			ID:      fmt.Sprintf("contact:%d", i),
			Name:    fmt.Sprintf("Contact %d", i),
			Company: "Initech",
		})
		if err != nil {
			t.Fatalf("StoreContact failed: %v", err)
		}
	}
	storeContact(t, store, "contact:outside", "Outside", types.GenderUnknown)

	result, err := store.ListContacts(ctx, storage.ListOptions{Page: 1, Limit: 2, SortBy: "id"})
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if result.Total != 6 || len(result.Items) != 2 || !result.HasMore {
		t.Errorf("page 1: total=%d items=%d hasMore=%v", result.Total, len(result.Items), result.HasMore)
	}

	last, err := store.ListContacts(ctx, storage.ListOptions{Page: 3, Limit: 2, SortBy: "id"})
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(last.Items) != 2 || last.HasMore {
		t.Errorf("last page: items=%d hasMore=%v", len(last.Items), last.HasMore)
	}

	filtered, err := store.ListContacts(ctx, storage.ListOptions{Company: "Initech"})
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if filtered.Total != 5 {
		t.Errorf("company filter total=%d, want 5", filtered.Total)
	}
}

func TestDeleteContact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	storeContact(t, store, "contact:ann", "Ann", types.GenderUnknown)

	if err := store.DeleteContact(ctx, "contact:ann"); err != nil {
		t.Fatalf("DeleteContact failed: %v", err)
	}
	if _, err := store.GetContact(ctx, "contact:ann"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("contact still present after delete")
	}
	if err := store.DeleteContact(ctx, "contact:ann"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestDirectory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	storeContact(t, store, "contact:ann", "Ann", types.GenderFemale)
	storeContact(t, store, "contact:bo", "Bo", types.GenderMale)

	dir, err := store.Directory(ctx)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if len(dir) != 2 {
		t.Fatalf("directory size = %d, want 2", len(dir))
	}
	if dir["contact:ann"].Gender != types.GenderFemale {
		t.Error("directory entry lost its gender")
	}
}

func TestCreatePair_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	start := now.AddDate(-1, 0, 0)
	f, r := testPair("1", "contact:ann", "contact:bo", types.RelParent, types.RelSon, types.CategoryFamily, now)
	f.Strength, r.Strength = 9, 9
	f.StartDate, r.StartDate = &start, &start
	r.IsGenderResolved = true
	r.OriginalType = types.RelParent

	if err := store.CreatePair(ctx, f, r); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	forward, reverse, err := store.GetPair(ctx, "contact:ann", "contact:bo")
	if err != nil {
		t.Fatalf("GetPair failed: %v", err)
	}
	if forward.Type != types.RelParent || reverse.Type != types.RelSon {
		t.Errorf("types = %q/%q, want parent/son", forward.Type, reverse.Type)
	}
	if forward.PairID != reverse.PairID {
		t.Error("pair identity not shared")
	}
	if !reverse.IsGenderResolved || reverse.OriginalType != types.RelParent {
		t.Error("gender audit trail lost in round trip")
	}
	if forward.StartDate == nil || !forward.StartDate.Equal(start) {
		t.Errorf("start date lost: %v", forward.StartDate)
	}
	if forward.EndDate != nil {
		t.Error("nil end date came back non-nil")
	}
}

func TestCreatePair_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	f, r := testPair("1", "contact:ann", "contact:bo", types.RelFriend, types.RelFriend, types.CategorySocial, now)
	if err := store.CreatePair(ctx, f, r); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	// Same unordered pair from the other direction.
	f2, r2 := testPair("2", "contact:bo", "contact:ann", types.RelColleague, types.RelColleague, types.CategoryProfessional, now)
	if err := store.CreatePair(ctx, f2, r2); !errors.Is(err, storage.ErrPairExists) {
		t.Errorf("duplicate pair: got %v, want ErrPairExists", err)
	}

	// The failed create must not have left a partial write behind.
	edges, err := store.AllEdges(ctx)
	if err != nil {
		t.Fatalf("AllEdges failed: %v", err)
	}
	if len(edges) != 2 {
		t.Errorf("store holds %d edges after rejected create, want 2", len(edges))
	}
}

func TestGetPair_OrientsToCaller(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, r := testPair("1", "contact:ann", "contact:bo", types.RelParent, types.RelSon, types.CategoryFamily, time.Now())
	if err := store.CreatePair(ctx, f, r); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	// Asked from Bo's side, the first edge runs Bo→Ann.
	forward, reverse, err := store.GetPair(ctx, "contact:bo", "contact:ann")
	if err != nil {
		t.Fatalf("GetPair failed: %v", err)
	}
	if forward.ContactAID != "contact:bo" || forward.Type != types.RelSon {
		t.Errorf("forward = %s/%s, want Bo's direction", forward.ContactAID, forward.Type)
	}
	if reverse.ContactAID != "contact:ann" || reverse.Type != types.RelParent {
		t.Errorf("reverse = %s/%s, want Ann's direction", reverse.ContactAID, reverse.Type)
	}
}

func TestGetPair_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.GetPair(context.Background(), "a", "b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdatePair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, r := testPair("1", "contact:ann", "contact:bo", types.RelFriend, types.RelFriend, types.CategorySocial, time.Now())
	if err := store.CreatePair(ctx, f, r); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	f.Strength, r.Strength = 8, 8
	f.Notes, r.Notes = "college", "college"
	f.UpdatedAt, r.UpdatedAt = time.Now(), time.Now()
	if err := store.UpdatePair(ctx, f, r); err != nil {
		t.Fatalf("UpdatePair failed: %v", err)
	}

	forward, reverse, err := store.GetPair(ctx, "contact:ann", "contact:bo")
	if err != nil {
		t.Fatalf("GetPair failed: %v", err)
	}
	if forward.Strength != 8 || reverse.Strength != 8 {
		t.Error("strength update not persisted on both directions")
	}
	if forward.Notes != "college" {
		t.Error("notes update not persisted")
	}
}

func TestUpdatePair_MissingEdge(t *testing.T) {
	store := newTestStore(t)
	f, r := testPair("1", "a", "b", types.RelFriend, types.RelFriend, types.CategorySocial, time.Now())
	if err := store.UpdatePair(context.Background(), f, r); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeletePair_RemovesBothDirections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, r := testPair("1", "contact:ann", "contact:bo", types.RelFriend, types.RelFriend, types.CategorySocial, time.Now())
	if err := store.CreatePair(ctx, f, r); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	if err := store.DeletePair(ctx, "contact:bo", "contact:ann"); err != nil {
		t.Fatalf("DeletePair failed: %v", err)
	}

	edges, err := store.AllEdges(ctx)
	if err != nil {
		t.Fatalf("AllEdges failed: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("%d edges survive the pair delete", len(edges))
	}

	if err := store.DeletePair(ctx, "contact:ann", "contact:bo"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListEdges_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	f1, r1 := testPair("1", "contact:ann", "contact:bo", types.RelFriend, types.RelFriend, types.CategorySocial, now)
	f2, r2 := testPair("2", "contact:ann", "contact:cy", types.RelManager, types.RelEmployee, types.CategoryProfessional, now.Add(time.Second))
	f2.Status, r2.Status = types.StatusDistant, types.StatusDistant
	for _, pair := range [][2]*types.RelationshipEdge{{f1, r1}, {f2, r2}} {
		if err := store.CreatePair(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("CreatePair failed: %v", err)
		}
	}

	byCategory, err := store.ListEdges(ctx, storage.ListOptions{Category: types.CategorySocial})
	if err != nil {
		t.Fatalf("ListEdges failed: %v", err)
	}
	if byCategory.Total != 2 {
		t.Errorf("category filter total=%d, want 2 (both directions)", byCategory.Total)
	}

	byStatus, err := store.ListEdges(ctx, storage.ListOptions{Status: types.StatusDistant})
	if err != nil {
		t.Fatalf("ListEdges failed: %v", err)
	}
	if byStatus.Total != 2 {
		t.Errorf("status filter total=%d, want 2", byStatus.Total)
	}

	byContact, err := store.ListEdges(ctx, storage.ListOptions{ContactID: "contact:bo"})
	if err != nil {
		t.Fatalf("ListEdges failed: %v", err)
	}
	if byContact.Total != 2 {
		t.Errorf("contact filter total=%d, want 2", byContact.Total)
	}

	combined, err := store.ListEdges(ctx, storage.ListOptions{
		Category:  types.CategoryProfessional,
		ContactID: "contact:cy",
	})
	if err != nil {
		t.Fatalf("ListEdges failed: %v", err)
	}
	if combined.Total != 2 {
		t.Errorf("combined filter total=%d, want 2", combined.Total)
	}
}

func TestEdgesForContact_CreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	f1, r1 := testPair("1", "contact:ann", "contact:bo", types.RelFriend, types.RelFriend, types.CategorySocial, base)
	f2, r2 := testPair("2", "contact:ann", "contact:cy", types.RelFriend, types.RelFriend, types.CategorySocial, base.Add(time.Second))
	if err := store.CreatePair(ctx, f1, r1); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}
	if err := store.CreatePair(ctx, f2, r2); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}

	edges, err := store.EdgesForContact(ctx, "contact:ann")
	if err != nil {
		t.Fatalf("EdgesForContact failed: %v", err)
	}
	if len(edges) != 4 {
		t.Fatalf("got %d edges, want 4 (both directions of both pairs)", len(edges))
	}
	if !edges[0].CreatedAt.Before(edges[3].CreatedAt) {
		t.Error("edges not in creation order")
	}

	// Only edges touching the contact come back.
	boEdges, err := store.EdgesForContact(ctx, "contact:bo")
	if err != nil {
		t.Fatalf("EdgesForContact failed: %v", err)
	}
	if len(boEdges) != 2 {
		t.Errorf("got %d edges for bo, want 2", len(boEdges))
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
