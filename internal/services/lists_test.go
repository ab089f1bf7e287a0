package services_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/internal/testutil"
)

func TestListService_EnsureDefault(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	listService := services.NewListService(listRepo)
	ctx := context.Background()

	user := createUser(t, userRepo, "user@example.com")

	if err := listService.EnsureDefault(ctx, user.ID); err != nil {
		t.Fatalf("ensuring default list: %v", err)
	}
	// Idempotent on the second touch.
	if err := listService.EnsureDefault(ctx, user.ID); err != nil {
		t.Fatalf("re-ensuring default list: %v", err)
	}

	lists, err := listService.FindForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("finding lists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected exactly 1 list, got %d", len(lists))
	}
	if lists[0].Type != models.ListTypePrivate {
		t.Errorf("expected a private list, got %q", lists[0].Type)
	}
}

func TestListService_RenameRequiresOwner(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	listService := services.NewListService(listRepo)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	member := createUser(t, userRepo, "member@example.com")

	list, err := listService.Create(ctx, owner.ID, "Flat", models.ListTypeShared)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	if err := listRepo.AddMember(ctx, list.ID, member.ID); err != nil {
		t.Fatalf("adding member: %v", err)
	}

	if _, err := listService.Rename(ctx, list.ID, member.ID, "Stolen"); !errors.Is(err, services.ErrNotListOwner) {
		t.Fatalf("expected ErrNotListOwner, got %v", err)
	}

	renamed, err := listService.Rename(ctx, list.ID, owner.ID, "Apartment")
	if err != nil {
		t.Fatalf("renaming list: %v", err)
	}
	if renamed.Name != "Apartment" {
		t.Errorf("expected name 'Apartment', got %q", renamed.Name)
	}
}

func TestListService_DeleteLastPrivateListBlocked(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	listService := services.NewListService(listRepo)
	ctx := context.Background()

	user := createUser(t, userRepo, "user@example.com")
	only, err := listService.Create(ctx, user.ID, "Pantry", models.ListTypePrivate)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}

	if err := listService.Delete(ctx, only.ID, user.ID); !errors.Is(err, services.ErrLastPrivateList) {
		t.Fatalf("expected ErrLastPrivateList, got %v", err)
	}

	// With a second private list the first becomes deletable, via
	// tombstone rather than removal.
	if _, err := listService.Create(ctx, user.ID, "Garage", models.ListTypePrivate); err != nil {
		t.Fatalf("creating second list: %v", err)
	}
	if err := listService.Delete(ctx, only.ID, user.ID); err != nil {
		t.Fatalf("deleting private list: %v", err)
	}

	found, err := listRepo.FindByID(ctx, only.ID)
	if err != nil {
		t.Fatalf("finding tombstoned list: %v", err)
	}
	if !found.Tombstoned {
		t.Error("expected private list to be tombstoned, not deleted")
	}
}

func TestListService_DeleteSharedListIsHard(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	listService := services.NewListService(listRepo)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	shared, err := listService.Create(ctx, owner.ID, "Flat", models.ListTypeShared)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}

	if err := listService.Delete(ctx, shared.ID, owner.ID); err != nil {
		t.Fatalf("deleting shared list: %v", err)
	}
	if _, err := listRepo.FindByID(ctx, shared.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected shared list to be gone, got %v", err)
	}
}

func TestListService_RemoveMemberRules(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	listService := services.NewListService(listRepo)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	alice := createUser(t, userRepo, "alice@example.com")
	bob := createUser(t, userRepo, "bob@example.com")

	list, err := listService.Create(ctx, owner.ID, "Flat", models.ListTypeShared)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	for _, id := range []string{alice.ID, bob.ID} {
		if err := listRepo.AddMember(ctx, list.ID, id); err != nil {
			t.Fatalf("adding member: %v", err)
		}
	}

	// Nobody can remove the owner, not even the owner.
	if err := listService.RemoveMember(ctx, list.ID, owner.ID, owner.ID); !errors.Is(err, services.ErrOwnerRemoval) {
		t.Fatalf("expected ErrOwnerRemoval, got %v", err)
	}

	// A member cannot remove another member.
	if err := listService.RemoveMember(ctx, list.ID, alice.ID, bob.ID); !errors.Is(err, services.ErrNotListOwner) {
		t.Fatalf("expected ErrNotListOwner, got %v", err)
	}

	// A member may leave on their own.
	if err := listService.RemoveMember(ctx, list.ID, alice.ID, alice.ID); err != nil {
		t.Fatalf("leaving list: %v", err)
	}

	// The owner may remove anyone else.
	if err := listService.RemoveMember(ctx, list.ID, owner.ID, bob.ID); err != nil {
		t.Fatalf("removing member: %v", err)
	}

	found, err := listRepo.FindByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("finding list: %v", err)
	}
	if len(found.MemberIDs) != 1 || found.MemberIDs[0] != owner.ID {
		t.Errorf("expected only the owner to remain, got %v", found.MemberIDs)
	}
}
