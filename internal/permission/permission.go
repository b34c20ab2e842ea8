// Package permission reconciles whiteboard permission lists: pending
// email-bound entries are promoted to resolved user-bound entries when a
// matching account exists, and every update is checked against the owner
// invariant (at least one resolved entry with role own) before it is
// applied anywhere.
package permission

import (
	"context"

	"github.com/google/uuid"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Directory is the account lookup capability the resolver depends on.
// The durable account service implements it; tests use an in-memory one.
type Directory interface {
	// FindUsersByEmail maps each email that belongs to a registered
	// account to that account's user id. Unregistered emails are simply
	// absent from the result.
	FindUsersByEmail(ctx context.Context, emails []string) (map[string]model.UserID, error)

	// FilterUnknownUserIDs returns the subset of ids that do not belong
	// to any registered account.
	FilterUnknownUserIDs(ctx context.Context, ids []model.UserID) ([]model.UserID, error)
}

// Status tags the outcome of a permission-list update.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusForbidden    Status = "forbidden"
	StatusInvalidUsers Status = "invalid_users"
	StatusUnknownUsers Status = "unknown_users"
	StatusNeedOneOwner Status = "need_one_owner"
	StatusError        Status = "error"
)

// Result is the tagged outcome of Apply. Failures carry the offending
// identifiers; nothing is ever silently dropped or merged.
type Result struct {
	Status       Status
	Permissions  []model.PermissionEntry
	InvalidUsers []string
	UnknownUsers []model.UserID
	Err          error
}

// Resolve promotes every pending email entry whose address now matches a
// registered account to resolved form, preserving the original role.
// Entries that stay unmatched remain pending. Already-resolved entries
// pass through untouched.
func Resolve(ctx context.Context, dir Directory, entries []model.PermissionEntry) ([]model.PermissionEntry, error) {
	var emails []string
	for _, entry := range entries {
		if entry.Type == model.PermissionByEmail {
			emails = append(emails, entry.Email)
		}
	}
	if len(emails) == 0 {
		return entries, nil
	}

	usersByEmail, err := dir.FindUsersByEmail(ctx, emails)
	if err != nil {
		return nil, err
	}

	resolved := make([]model.PermissionEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == model.PermissionByEmail {
			if userID, ok := usersByEmail[entry.Email]; ok {
				entry = model.PermissionEntry{
					Type:   model.PermissionByUser,
					UserID: userID,
					Role:   entry.Role,
				}
			}
		}
		resolved = append(resolved, entry)
	}
	return resolved, nil
}

// HasResolvedOwner reports whether the list satisfies the owner
// invariant.
func HasResolvedOwner(entries []model.PermissionEntry) bool {
	for _, entry := range entries {
		if entry.Resolved() && entry.Role == model.RoleOwn {
			return true
		}
	}
	return false
}

// isOwner reports whether actor holds a resolved own entry in current.
func isOwner(current []model.PermissionEntry, actor model.UserID) bool {
	for _, entry := range current {
		if entry.Resolved() && entry.Role == model.RoleOwn && entry.UserID == actor {
			return true
		}
	}
	return false
}

// Apply validates a proposed permission list against the current one and
// produces the canonical replacement. The update fails, leaving the
// current list untouched, when:
//
//   - the actor does not hold a resolved own entry (forbidden);
//   - any user-bound entry carries an id that does not parse
//     (invalid_users, with the offending ids);
//   - any well-formed user id belongs to no registered account
//     (unknown_users, reported separately — never merged with the
//     malformed ones);
//   - the resolved result would contain zero resolved own entries
//     (need_one_owner).
func Apply(ctx context.Context, dir Directory, current []model.PermissionEntry, actor model.UserID, proposed []model.PermissionEntry) Result {
	if !isOwner(current, actor) {
		return Result{Status: StatusForbidden}
	}

	var malformed []string
	var userIDs []model.UserID
	for _, entry := range proposed {
		if entry.Type != model.PermissionByUser {
			continue
		}
		if _, err := uuid.Parse(entry.UserID); err != nil {
			malformed = append(malformed, entry.UserID)
			continue
		}
		userIDs = append(userIDs, entry.UserID)
	}
	if len(malformed) > 0 {
		return Result{Status: StatusInvalidUsers, InvalidUsers: malformed}
	}

	if len(userIDs) > 0 {
		unknown, err := dir.FilterUnknownUserIDs(ctx, userIDs)
		if err != nil {
			return Result{Status: StatusError, Err: err}
		}
		if len(unknown) > 0 {
			return Result{Status: StatusUnknownUsers, UnknownUsers: unknown}
		}
	}

	resolved, err := Resolve(ctx, dir, proposed)
	if err != nil {
		return Result{Status: StatusError, Err: err}
	}

	if !HasResolvedOwner(resolved) {
		return Result{Status: StatusNeedOneOwner}
	}

	return Result{Status: StatusSuccess, Permissions: resolved}
}
