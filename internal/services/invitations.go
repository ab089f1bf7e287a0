package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
)

var (
	ErrNotInvitee      = errors.New("invitation is addressed to someone else")
	ErrSelfInvitation  = errors.New("cannot invite yourself")
	ErrAlreadyMember   = errors.New("user is already a member of this list")
	ErrDuplicateInvite = errors.New("a pending invitation for this email already exists")
	ErrListUnavailable = errors.New("list no longer exists")
)

type InvitationService struct {
	invitationRepo repository.InvitationRepository
	listRepo       repository.ListRepository
}

func NewInvitationService(invitationRepo repository.InvitationRepository, listRepo repository.ListRepository) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		listRepo:       listRepo,
	}
}

// Invite creates a pending invitation for the email to join the list.
// Only the owner may invite. Inviting into a private list promotes it
// to shared.
func (service *InvitationService) Invite(ctx context.Context, listID string, inviter models.User, toEmail string) (models.Invitation, error) {
	toEmail = strings.ToLower(strings.TrimSpace(toEmail))
	if toEmail == "" {
		return models.Invitation{}, errors.New("invitee email is required")
	}
	if strings.EqualFold(toEmail, inviter.Email) {
		return models.Invitation{}, ErrSelfInvitation
	}

	list, err := service.listRepo.FindByID(ctx, listID)
	if err != nil {
		return models.Invitation{}, err
	}
	if list.Tombstoned {
		return models.Invitation{}, ErrListUnavailable
	}
	if list.OwnerID != inviter.ID {
		return models.Invitation{}, ErrNotListOwner
	}

	for _, email := range list.MemberEmails {
		if strings.EqualFold(email, toEmail) {
			return models.Invitation{}, ErrAlreadyMember
		}
	}

	pending, err := service.invitationRepo.FindPendingByEmail(ctx, toEmail)
	if err != nil {
		return models.Invitation{}, err
	}
	for _, invitation := range pending {
		if invitation.ListID == listID {
			return models.Invitation{}, ErrDuplicateInvite
		}
	}

	if list.Type == models.ListTypePrivate {
		if err := service.listRepo.SetType(ctx, listID, models.ListTypeShared); err != nil {
			return models.Invitation{}, fmt.Errorf("promoting list to shared: %w", err)
		}
	}

	return service.invitationRepo.Create(ctx, models.Invitation{
		ListID:    listID,
		ToEmail:   toEmail,
		InviterID: inviter.ID,
	})
}

// PendingFor returns the pending invitations addressed to the user's
// email, across all lists.
func (service *InvitationService) PendingFor(ctx context.Context, user models.User) ([]models.Invitation, error) {
	return service.invitationRepo.FindPendingByEmail(ctx, strings.ToLower(user.Email))
}

// Accept adds the user to the invited list's member set. Only the
// invitee may accept; accepting twice reports
// repository.ErrInvitationResolved and leaves membership unchanged.
func (service *InvitationService) Accept(ctx context.Context, invitationID string, user models.User) error {
	invitation, err := service.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(invitation.ToEmail, user.Email) {
		return ErrNotInvitee
	}

	return service.invitationRepo.Accept(ctx, invitationID, user.ID)
}

// Decline marks the invitation declined. Terminal; membership is
// untouched.
func (service *InvitationService) Decline(ctx context.Context, invitationID string, user models.User) error {
	invitation, err := service.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(invitation.ToEmail, user.Email) {
		return ErrNotInvitee
	}

	return service.invitationRepo.Decline(ctx, invitationID)
}
