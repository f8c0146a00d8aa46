// Package authz is the single decision point for moderation permissions.
// Every gated operation funnels through Authorize with the actor, the action
// and the target entities; call sites never re-implement role or ownership
// checks.
package authz

import (
	"errors"

	"github.com/avolkov/forum/internal/models"
)

// ErrForbidden is returned whenever the permission predicate fails. The
// caller surfaces it unchanged; nothing is ever partially applied.
var ErrForbidden = errors.New("forbidden")

// Action identifies a gated operation.
type Action int

const (
	ActionCreateTopic Action = iota
	ActionEditTopic
	ActionDeleteTopic
	ActionPinTopic
	ActionLockTopic
	ActionCreateComment
	ActionEditComment
	ActionDeleteComment
	ActionCreateCategory
	ActionEditCategory
	ActionDeleteCategory
	ActionLockCategory
	ActionChangeUserRole
	ActionDeleteUser
)

// Target bundles the entities an action operates on. Only the fields the
// action needs are consulted: comment actions read Comment for ownership and
// Topic for the lock gate, topic creation reads Category for its lock gate.
type Target struct {
	Category *models.Category
	Topic    *models.Topic
	Comment  *models.Comment
	User     *models.User
}

// Authorize evaluates the permission table for action against target.
// It returns nil when the action is allowed and ErrForbidden otherwise.
//
//	create topic        any user; locked category requires admin
//	edit/delete topic   author or admin; locked topic requires admin
//	create comment      any user; locked topic requires admin
//	edit/delete comment author or admin; locked topic requires admin
//	pin/lock topic      admin
//	category management admin
//	user administration admin, never against themselves
func Authorize(actor *models.User, action Action, target Target) error {
	if actor == nil {
		return ErrForbidden
	}
	admin := actor.IsAdmin()

	switch action {
	case ActionCreateTopic:
		if target.Category != nil && target.Category.Locked && !admin {
			return ErrForbidden
		}
		return nil

	case ActionEditTopic, ActionDeleteTopic:
		if target.Topic == nil {
			return ErrForbidden
		}
		if target.Topic.Locked {
			// Lock overrides authorship: only admins touch a locked topic.
			if admin {
				return nil
			}
			return ErrForbidden
		}
		if admin || target.Topic.AuthorID == actor.ID {
			return nil
		}
		return ErrForbidden

	case ActionCreateComment:
		if target.Topic == nil {
			return ErrForbidden
		}
		if target.Topic.Locked && !admin {
			return ErrForbidden
		}
		return nil

	case ActionEditComment, ActionDeleteComment:
		if target.Comment == nil || target.Topic == nil {
			return ErrForbidden
		}
		if target.Topic.Locked {
			if admin {
				return nil
			}
			return ErrForbidden
		}
		if admin || target.Comment.AuthorID == actor.ID {
			return nil
		}
		return ErrForbidden

	case ActionPinTopic, ActionLockTopic,
		ActionCreateCategory, ActionEditCategory, ActionDeleteCategory, ActionLockCategory:
		if admin {
			return nil
		}
		return ErrForbidden

	case ActionChangeUserRole, ActionDeleteUser:
		if !admin {
			return ErrForbidden
		}
		// An admin never acts on their own account through these.
		if target.User != nil && target.User.ID == actor.ID {
			return ErrForbidden
		}
		return nil

	default:
		return ErrForbidden
	}
}
