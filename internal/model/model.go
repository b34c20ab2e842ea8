// Package model holds the entity records shared by the sync engine:
// whiteboards, canvases, shapes and permission entries. Records are plain
// data; all validation happens at the protocol boundary and all business
// rules live in the permission resolver.
package model

import "time"

// Identifier aliases. All ids are UUID strings; client ids are assigned
// per transport session, user ids by the account service.
type (
	WhiteboardID = string
	CanvasID     = string
	ShapeID      = string
	ClientID     = string
	UserID       = string
	Username     = string
)

// Role is the permission level a collaborator holds on a whiteboard.
type Role string

const (
	RoleOwn  Role = "own"
	RoleEdit Role = "edit"
	RoleView Role = "view"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwn, RoleEdit, RoleView:
		return true
	}
	return false
}

// Permission entry kinds. A "user" entry is resolved (bound to a
// registered account); an "email" entry is pending (bound only to an
// invited address).
const (
	PermissionByUser  = "user"
	PermissionByEmail = "email"
)

// PermissionEntry is one collaborator entry on a whiteboard, either
// resolved (UserID set) or pending (Email set), per the Type tag.
type PermissionEntry struct {
	Type   string `json:"type" validate:"required,oneof=user email"`
	UserID UserID `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role" validate:"required,oneof=own edit view"`
}

// Resolved reports whether the entry is bound to a registered user.
func (p PermissionEntry) Resolved() bool {
	return p.Type == PermissionByUser && p.UserID != ""
}

// UserSummary identifies an active client for presence payloads.
type UserSummary struct {
	ClientID ClientID `json:"clientId"`
	Username Username `json:"username"`
}

// Whiteboard is the top-level shared document. Invariant (enforced by
// the permission resolver, never here): Permissions always contains at
// least one resolved entry with RoleOwn.
type Whiteboard struct {
	ID          WhiteboardID      `json:"id"`
	Name        string            `json:"name"`
	Permissions []PermissionEntry `json:"permissions,omitempty"`
}

// Canvas is a bounded drawable surface within a whiteboard. An empty
// AllowedUsers set means the canvas inherits whiteboard-level access.
// The advisory current-editor marker is tracked by the presence tracker,
// not stored on the record.
type Canvas struct {
	ID               CanvasID      `json:"id"`
	WhiteboardID     WhiteboardID  `json:"whiteboardId"`
	ParentCanvasID   CanvasID      `json:"parentCanvasId,omitempty"`
	Name             string        `json:"name"`
	Width            float64       `json:"width"`
	Height           float64       `json:"height"`
	AllowedUsers     []UserSummary `json:"allowedUsers,omitempty"`
	TimeCreated      time.Time     `json:"timeCreated,omitzero"`
	TimeLastModified time.Time     `json:"timeLastModified,omitzero"`
}

// CanvasView is a canvas joined with its shapes, as sent to clients.
type CanvasView struct {
	Canvas
	Shapes map[ShapeID]ShapeModel `json:"shapes"`
}

// WhiteboardView is a whiteboard joined with its canvases, as sent in
// the init_client snapshot.
type WhiteboardView struct {
	ID       WhiteboardID `json:"id"`
	Name     string       `json:"name"`
	Canvases []CanvasView `json:"canvases"`
}
