package catalog

import (
	"github.com/uptrace/bun"

	"github.com/Additional-Code/bazaar/internal/entity"
)

// Scope captures who is asking, so listing queries can be filtered to what
// the caller may see: admins see everything, suppliers see their own rows
// plus anything published, everyone else sees published/approved only.
type Scope struct {
	Role   entity.Role
	UserID string
}

// Public is the scope of an unauthenticated caller.
var Public = Scope{}

// Allows reports whether an item with the given status and owner is visible
// under the scope. It mirrors apply for rows obtained outside a scoped
// query, such as cache hits.
func (s Scope) Allows(status entity.ListingStatus, createdBy string) bool {
	switch s.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleSupplier:
		if createdBy != "" && createdBy == s.UserID {
			return true
		}
	}
	for _, st := range entity.PublicStatuses {
		if st == status {
			return true
		}
	}
	return false
}

// apply narrows a select query according to the scope.
func (s Scope) apply(q *bun.SelectQuery) *bun.SelectQuery {
	switch s.Role {
	case entity.RoleAdmin:
		return q
	case entity.RoleSupplier:
		uid := s.UserID
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("created_by = ?", uid).
				WhereOr("status IN (?)", bun.In(entity.PublicStatuses))
		})
	default:
		return q.Where("status IN (?)", bun.In(entity.PublicStatuses))
	}
}
