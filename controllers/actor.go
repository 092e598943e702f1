package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dineflow/pos-backend/models"
)

// Actor identifies who is performing the request, taken from the auth
// middleware's JWT claims.
type Actor struct {
	ID       uint
	Role     string
	OutletID uint
}

func actorFrom(c *gin.Context) Actor {
	actor := Actor{}
	if v, ok := c.Get("actor_id"); ok {
		actor.ID = v.(uint)
	}
	if v, ok := c.Get("role"); ok {
		actor.Role = v.(string)
	}
	if v, ok := c.Get("outlet_id"); ok {
		actor.OutletID = v.(uint)
	}
	return actor
}

// canOverrideLock reports whether the role may mutate sessions it does not
// hold. Cashiers and admins settle and cancel across the whole floor.
func canOverrideLock(role string) bool {
	return role == "cashier" || role == "admin" || role == "manager"
}

// assertCanMutate is the single actor-lock guard: a session may be mutated
// by the waiter who opened it or by an override role, nobody else.
func assertCanMutate(session *models.TableSession, actor Actor) error {
	if session == nil {
		return nil
	}
	if session.HeldBy(actor.ID) || canOverrideLock(actor.Role) {
		return nil
	}
	return ErrSessionLockViolation
}
