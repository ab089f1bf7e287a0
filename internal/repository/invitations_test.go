package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/testutil"
)

func TestInvitationRepository_CreateAndFindPending(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, userRepo, "owner@example.com")
	list := createTestList(t, listRepo, owner, models.ListTypeShared)

	created, err := invitationRepo.Create(ctx, models.Invitation{
		ListID:    list.ID,
		ToEmail:   "friend@example.com",
		InviterID: owner.ID,
	})
	if err != nil {
		t.Fatalf("creating invitation: %v", err)
	}
	if created.Status != models.InvitationPending {
		t.Errorf("expected pending status, got %q", created.Status)
	}

	pending, err := invitationRepo.FindPendingByEmail(ctx, "friend@example.com")
	if err != nil {
		t.Fatalf("finding pending invitations: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending invitation, got %d", len(pending))
	}
	if pending[0].ListName != "Kitchen" {
		t.Errorf("expected list name to be resolved, got %q", pending[0].ListName)
	}
	if pending[0].InviterEmail != "owner@example.com" {
		t.Errorf("expected inviter email to be resolved, got %q", pending[0].InviterEmail)
	}
}

func TestInvitationRepository_AcceptGrantsMembership(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, userRepo, "owner@example.com")
	friend := createTestUser(t, userRepo, "friend@example.com")
	list := createTestList(t, listRepo, owner, models.ListTypeShared)

	invitation, err := invitationRepo.Create(ctx, models.Invitation{
		ListID:    list.ID,
		ToEmail:   friend.Email,
		InviterID: owner.ID,
	})
	if err != nil {
		t.Fatalf("creating invitation: %v", err)
	}

	if err := invitationRepo.Accept(ctx, invitation.ID, friend.ID); err != nil {
		t.Fatalf("accepting invitation: %v", err)
	}

	member, err := listRepo.IsMember(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("checking membership: %v", err)
	}
	if !member {
		t.Error("expected invitee to be a member after accepting")
	}

	found, err := invitationRepo.FindByID(ctx, invitation.ID)
	if err != nil {
		t.Fatalf("finding invitation: %v", err)
	}
	if found.Status != models.InvitationAccepted {
		t.Errorf("expected accepted status, got %q", found.Status)
	}
	if found.ResolvedAt == nil {
		t.Error("expected resolved timestamp to be set")
	}
}

func TestInvitationRepository_AcceptTwiceReportsResolved(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, userRepo, "owner@example.com")
	friend := createTestUser(t, userRepo, "friend@example.com")
	list := createTestList(t, listRepo, owner, models.ListTypeShared)

	invitation, err := invitationRepo.Create(ctx, models.Invitation{
		ListID:    list.ID,
		ToEmail:   friend.Email,
		InviterID: owner.ID,
	})
	if err != nil {
		t.Fatalf("creating invitation: %v", err)
	}

	if err := invitationRepo.Accept(ctx, invitation.ID, friend.ID); err != nil {
		t.Fatalf("accepting invitation: %v", err)
	}
	err = invitationRepo.Accept(ctx, invitation.ID, friend.ID)
	if !errors.Is(err, repository.ErrInvitationResolved) {
		t.Fatalf("expected ErrInvitationResolved, got %v", err)
	}

	// Membership must be untouched by the failed second accept.
	member, err := listRepo.IsMember(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("checking membership: %v", err)
	}
	if !member {
		t.Error("expected membership to survive the duplicate accept")
	}
}

func TestInvitationRepository_DeclineLeavesMembershipUntouched(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, userRepo, "owner@example.com")
	friend := createTestUser(t, userRepo, "friend@example.com")
	list := createTestList(t, listRepo, owner, models.ListTypeShared)

	invitation, err := invitationRepo.Create(ctx, models.Invitation{
		ListID:    list.ID,
		ToEmail:   friend.Email,
		InviterID: owner.ID,
	})
	if err != nil {
		t.Fatalf("creating invitation: %v", err)
	}

	if err := invitationRepo.Decline(ctx, invitation.ID); err != nil {
		t.Fatalf("declining invitation: %v", err)
	}

	member, err := listRepo.IsMember(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("checking membership: %v", err)
	}
	if member {
		t.Error("expected no membership after declining")
	}

	// Declined is terminal: a later accept must fail.
	if err := invitationRepo.Accept(ctx, invitation.ID, friend.ID); !errors.Is(err, repository.ErrInvitationResolved) {
		t.Errorf("expected ErrInvitationResolved after decline, got %v", err)
	}
}
