// Package protocol defines the wire message set exchanged between
// whiteboard clients and the server, along with decoding, validation and
// sanitization of inbound frames. All messages are JSON records tagged
// by a "type" discriminator field.
package protocol

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Client → server message types.
const (
	TypeRegister           = "register"
	TypeEditingCanvas      = "editing_canvas"
	TypeCreateCanvas       = "create_canvas"
	TypeCreateShapes       = "create_shapes"
	TypeUpdateShape        = "update_shape"
	TypeDeleteCanvases     = "delete_canvases"
	TypeUpdateAllowedUsers = "update_canvas_allowed_users"
)

// Server → client message types. create_canvas, create_shapes,
// update_canvas_allowed_users and delete_canvases share tags with their
// client counterparts; direction disambiguates.
const (
	TypeInitClient          = "init_client"
	TypeActiveUsersUpdate   = "active_users_update"
	TypeClientLogin         = "client_login"
	TypeClientLogout        = "client_logout"
	TypeCanvasEditorsUpdate = "canvas_editors_update"
	TypeIndividualError     = "individual_error"
	TypeBroadcastError      = "broadcast_error"
)

// ClientMessage is implemented by every inbound message type.
type ClientMessage interface{ clientMessage() }

// ServerMessage is implemented by every outbound message type.
type ServerMessage interface{ serverMessage() }

// ========================== CLIENT → SERVER ==================================

// Register is the first message a client sends after the transport
// handshake; presence is rebuilt from it on every (re)connect.
type Register struct {
	Type     string         `json:"type"`
	Username model.Username `json:"username" validate:"required,max=100"`
}

// EditingCanvas sets or clears the sender as the advisory current editor
// of a canvas. Empty CanvasID clears the sender's marker.
type EditingCanvas struct {
	Type     string         `json:"type"`
	CanvasID model.CanvasID `json:"canvasId"`
}

// CreateCanvas asks the server to create a canvas on the session's
// whiteboard. The server assigns the canonical canvas id.
type CreateCanvas struct {
	Type           string              `json:"type"`
	Width          float64             `json:"width" validate:"required,gt=0,max=1000000"`
	Height         float64             `json:"height" validate:"required,gt=0,max=1000000"`
	Name           string              `json:"name" validate:"max=200"`
	ParentCanvasID model.CanvasID      `json:"parentCanvasId,omitempty"`
	AllowedUsers   []model.UserSummary `json:"allowedUsers,omitempty"`
}

// CreateShapes commits drafted shapes to a canvas. Shapes carry no ids;
// the server assigns them and echoes the records back in array order so
// the sender can reconcile its optimistic temp-id drafts positionally.
type CreateShapes struct {
	Type     string             `json:"type"`
	CanvasID model.CanvasID     `json:"canvasId" validate:"required"`
	Shapes   []model.ShapeModel `json:"shapes" validate:"required,min=1,max=100"`
}

// UpdateShape replaces one shape record wholesale. There is no
// field-level merge; concurrent updates resolve last-apply-wins per id.
type UpdateShape struct {
	Type     string           `json:"type"`
	CanvasID model.CanvasID   `json:"canvasId" validate:"required"`
	ShapeID  model.ShapeID    `json:"shapeId" validate:"required"`
	Shape    model.ShapeModel `json:"shape" validate:"required"`
}

// DeleteCanvases removes canvases (and their shapes) from the
// whiteboard.
type DeleteCanvases struct {
	Type      string           `json:"type"`
	CanvasIDs []model.CanvasID `json:"canvasIds" validate:"required,min=1"`
}

// UpdateAllowedUsers replaces the allowed-user set of a canvas. An empty
// set reopens the canvas to all whiteboard collaborators.
type UpdateAllowedUsers struct {
	Type         string              `json:"type"`
	CanvasID     model.CanvasID      `json:"canvasId" validate:"required"`
	AllowedUsers []model.UserSummary `json:"allowedUsers"`
}

func (Register) clientMessage()           {}
func (EditingCanvas) clientMessage()      {}
func (CreateCanvas) clientMessage()       {}
func (CreateShapes) clientMessage()       {}
func (UpdateShape) clientMessage()        {}
func (DeleteCanvases) clientMessage()     {}
func (UpdateAllowedUsers) clientMessage() {}

// ========================== SERVER → CLIENT ==================================

// InitClient carries the full whiteboard snapshot sent to one client on
// registration. A reconnecting client discards all local state and
// rebuilds from this, never diffing.
type InitClient struct {
	Type        string               `json:"type"`
	ClientID    model.ClientID       `json:"clientId"`
	Username    model.Username       `json:"username"`
	ActiveUsers []model.UserSummary  `json:"activeUsers"`
	Whiteboard  model.WhiteboardView `json:"whiteboard"`
}

// ActiveUsersUpdate replaces the whiteboard's active-user list.
type ActiveUsersUpdate struct {
	Type        string              `json:"type"`
	ActiveUsers []model.UserSummary `json:"activeUsers"`
}

// ClientLogin announces a newly registered client to its peers.
type ClientLogin struct {
	Type     string         `json:"type"`
	ClientID model.ClientID `json:"clientId"`
	Username model.Username `json:"username"`
	Color    string         `json:"color,omitempty"`
}

// ClientLogout announces a departed client. Emitted by the disconnect
// hook, so it fires on abrupt closes too.
type ClientLogout struct {
	Type     string         `json:"type"`
	ClientID model.ClientID `json:"clientId"`
	Username model.Username `json:"username"`
}

// CanvasEditorsUpdate merges advisory editor markers. An empty client id
// clears the marker for that canvas.
type CanvasEditorsUpdate struct {
	Type    string                            `json:"type"`
	Editors map[model.CanvasID]model.ClientID `json:"editorsByCanvas"`
}

// CanvasCreated is the broadcast form of a successful create_canvas,
// echoed to the sender as well for id confirmation.
type CanvasCreated struct {
	Type           string              `json:"type"`
	ClientID       model.ClientID      `json:"clientId"`
	CanvasID       model.CanvasID      `json:"canvasId"`
	Width          float64             `json:"width"`
	Height         float64             `json:"height"`
	Name           string              `json:"name"`
	ParentCanvasID model.CanvasID      `json:"parentCanvasId,omitempty"`
	AllowedUsers   []model.UserSummary `json:"allowedUsers"`
}

// ShapesCreated is the broadcast form of a successful create_shapes.
// Records are in the client's original array order, now carrying
// server-assigned ids; the sender reconciles its temp drafts from it.
type ShapesCreated struct {
	Type     string         `json:"type"`
	ClientID model.ClientID `json:"clientId"`
	CanvasID model.CanvasID `json:"canvasId"`
	Shapes   []model.Shape  `json:"shapes"`
}

// ShapeUpdated is the broadcast form of a successful update_shape,
// excluding the sender (it already applied the delta optimistically).
type ShapeUpdated struct {
	Type     string           `json:"type"`
	ClientID model.ClientID   `json:"clientId"`
	CanvasID model.CanvasID   `json:"canvasId"`
	ShapeID  model.ShapeID    `json:"shapeId"`
	Shape    model.ShapeModel `json:"shape"`
}

// CanvasesDeleted is the broadcast form of a successful delete_canvases.
type CanvasesDeleted struct {
	Type      string           `json:"type"`
	ClientID  model.ClientID   `json:"clientId"`
	CanvasIDs []model.CanvasID `json:"canvasIds"`
}

// AllowedUsersUpdated is the broadcast form of a successful
// update_canvas_allowed_users.
type AllowedUsersUpdated struct {
	Type         string              `json:"type"`
	CanvasID     model.CanvasID      `json:"canvasId"`
	AllowedUsers []model.UserSummary `json:"allowedUsers"`
}

// IndividualError is sent to exactly one client after its operation was
// rejected; nothing was applied or broadcast.
type IndividualError struct {
	Type     string         `json:"type"`
	ClientID model.ClientID `json:"clientId"`
	Message  string         `json:"message"`
}

// BroadcastError reports a whiteboard-wide failure to every session.
type BroadcastError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (InitClient) serverMessage()          {}
func (ActiveUsersUpdate) serverMessage()   {}
func (ClientLogin) serverMessage()         {}
func (ClientLogout) serverMessage()        {}
func (CanvasEditorsUpdate) serverMessage() {}
func (CanvasCreated) serverMessage()       {}
func (ShapesCreated) serverMessage()       {}
func (ShapeUpdated) serverMessage()        {}
func (CanvasesDeleted) serverMessage()     {}
func (AllowedUsersUpdated) serverMessage() {}
func (IndividualError) serverMessage()     {}
func (BroadcastError) serverMessage()      {}
