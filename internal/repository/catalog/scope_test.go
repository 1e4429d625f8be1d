package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/bazaar/internal/entity"
)

func TestPublicScopeSeesPublishedOnly(t *testing.T) {
	for _, status := range []entity.ListingStatus{entity.ListingApproved, entity.ListingPublished} {
		assert.True(t, Public.Allows(status, "supplier-1"), "status %s", status)
	}
	for _, status := range []entity.ListingStatus{entity.ListingPending, entity.ListingRejected} {
		assert.False(t, Public.Allows(status, "supplier-1"), "status %s", status)
	}
}

func TestRegularUserScopeMatchesPublic(t *testing.T) {
	scope := Scope{Role: entity.RoleUser, UserID: "user-1"}

	assert.True(t, scope.Allows(entity.ListingPublished, "supplier-1"))
	assert.False(t, scope.Allows(entity.ListingPending, "supplier-1"))
	// Owning the row grants nothing outside the supplier role.
	assert.False(t, scope.Allows(entity.ListingPending, "user-1"))
}

func TestSupplierScopeIsOwnUnionPublished(t *testing.T) {
	scope := Scope{Role: entity.RoleSupplier, UserID: "supplier-1"}

	// Own rows in any status.
	for _, status := range []entity.ListingStatus{entity.ListingPending, entity.ListingApproved, entity.ListingPublished, entity.ListingRejected} {
		assert.True(t, scope.Allows(status, "supplier-1"), "own status %s", status)
	}
	// Other suppliers' rows only when published.
	assert.True(t, scope.Allows(entity.ListingPublished, "supplier-2"))
	assert.True(t, scope.Allows(entity.ListingApproved, "supplier-2"))
	assert.False(t, scope.Allows(entity.ListingPending, "supplier-2"))
	assert.False(t, scope.Allows(entity.ListingRejected, "supplier-2"))
}

func TestAdminScopeSeesEverything(t *testing.T) {
	scope := Scope{Role: entity.RoleAdmin, UserID: "admin-1"}

	for _, status := range []entity.ListingStatus{entity.ListingPending, entity.ListingApproved, entity.ListingPublished, entity.ListingRejected} {
		assert.True(t, scope.Allows(status, "anyone"), "status %s", status)
	}
}
