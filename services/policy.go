package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
)

// Capability is something a user may be allowed to do within a tournament.
type Capability string

const (
	CapabilityReviewRaces Capability = "review_races"
)

var capabilityRoles = map[Capability][]models.PermissionRole{
	CapabilityReviewRaces: {models.RoleAdmin, models.RoleMod},
}

// RolesFor returns the roles that grant capability.
func RolesFor(capability Capability) []models.PermissionRole {
	return capabilityRoles[capability]
}

// AccessPolicy answers capability checks against the permission grants.
// Grants are read on every call since they may change between requests.
type AccessPolicy struct {
	permissionRepo repositories.PermissionRepository
}

func NewAccessPolicy(permissionRepo repositories.PermissionRepository) *AccessPolicy {
	return &AccessPolicy{permissionRepo: permissionRepo}
}

// Can reports whether user holds capability on the tournament.
// An anonymous (nil) user never does.
func (p *AccessPolicy) Can(ctx context.Context, tournamentID int, user *models.User, capability Capability) (bool, error) {
	if user == nil {
		return false, nil
	}
	roles := RolesFor(capability)
	if len(roles) == 0 {
		return false, nil
	}

	ok, err := p.permissionRepo.HasRole(ctx, tournamentID, user.ID, roles)
	if err != nil {
		return false, fmt.Errorf("failed to check %s for user %d: %w", capability, user.ID, err)
	}
	return ok, nil
}

func (p *AccessPolicy) CanReview(ctx context.Context, tournamentID int, user *models.User) (bool, error) {
	return p.Can(ctx, tournamentID, user, CapabilityReviewRaces)
}

// Require is Can that turns a denial into ErrNotAuthorized.
func (p *AccessPolicy) Require(ctx context.Context, tournamentID int, user *models.User, capability Capability) error {
	ok, err := p.Can(ctx, tournamentID, user, capability)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
