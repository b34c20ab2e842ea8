// Package directory implements the persistence/auth collaborator
// interface the sync core consumes: an account directory and a
// whiteboard snapshot service. The durable backing service is external;
// this in-memory implementation serves session init, local development
// and tests. The core itself holds no persistent storage.
package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/permission"
)

var (
	ErrNotFound  = errors.New("whiteboard not found")
	ErrInvalidID = errors.New("invalid whiteboard id")
)

// User is a registered account.
type User struct {
	ID       model.UserID
	Username model.Username
	Email    string
}

// CanvasSnapshot is a canvas with its persisted shapes.
type CanvasSnapshot struct {
	Canvas model.Canvas
	Shapes []model.Shape
}

// Snapshot is the durable state of one whiteboard, handed to the hub
// when the first session for that whiteboard arrives.
type Snapshot struct {
	Whiteboard model.Whiteboard
	Canvases   []CanvasSnapshot
}

// Service is the whiteboard persistence interface. The core treats it as
// the durable source of truth on session init.
type Service interface {
	CreateWhiteboard(ctx context.Context, name string, ownerID model.UserID) (model.Whiteboard, error)
	GetWhiteboardByID(ctx context.Context, id model.WhiteboardID) (*Snapshot, error)
	SetSharedUsers(ctx context.Context, whiteboardID model.WhiteboardID, actorID model.UserID, permissions []model.PermissionEntry) permission.Result
}

// InMemory is a seeded in-memory directory + whiteboard service.
type InMemory struct {
	mu          sync.RWMutex
	usersByID   map[model.UserID]User
	idsByEmail  map[string]model.UserID
	whiteboards map[model.WhiteboardID]*Snapshot
}

var _ Service = (*InMemory)(nil)
var _ permission.Directory = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		usersByID:   make(map[model.UserID]User),
		idsByEmail:  make(map[string]model.UserID),
		whiteboards: make(map[model.WhiteboardID]*Snapshot),
	}
}

// AddUser registers an account and returns its id.
func (d *InMemory) AddUser(username model.Username, email string) model.UserID {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := uuid.NewString()
	d.usersByID[id] = User{ID: id, Username: username, Email: email}
	d.idsByEmail[email] = id
	return id
}

// LookupUser returns the account for a user id.
func (d *InMemory) LookupUser(id model.UserID) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.usersByID[id]
	return user, ok
}

// FindUsersByEmail maps registered emails to user ids. Unregistered
// emails are absent from the result.
func (d *InMemory) FindUsersByEmail(_ context.Context, emails []string) (map[string]model.UserID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	found := make(map[string]model.UserID)
	for _, email := range emails {
		if id, ok := d.idsByEmail[email]; ok {
			found[email] = id
		}
	}
	return found, nil
}

// FilterUnknownUserIDs returns the ids that belong to no account.
func (d *InMemory) FilterUnknownUserIDs(_ context.Context, ids []model.UserID) ([]model.UserID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var unknown []model.UserID
	for _, id := range ids {
		if _, ok := d.usersByID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

// CreateWhiteboard creates a whiteboard owned by ownerID, with one
// default canvas the way the account service seeds new boards.
func (d *InMemory) CreateWhiteboard(_ context.Context, name string, ownerID model.UserID) (model.Whiteboard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.usersByID[ownerID]; !ok {
		return model.Whiteboard{}, errors.New("owner is not a registered user")
	}

	wb := model.Whiteboard{
		ID:   uuid.NewString(),
		Name: name,
		Permissions: []model.PermissionEntry{
			{Type: model.PermissionByUser, UserID: ownerID, Role: model.RoleOwn},
		},
	}
	now := time.Now()
	d.whiteboards[wb.ID] = &Snapshot{
		Whiteboard: wb,
		Canvases: []CanvasSnapshot{{
			Canvas: model.Canvas{
				ID:               uuid.NewString(),
				WhiteboardID:     wb.ID,
				Name:             "Canvas 1",
				Width:            1920,
				Height:           1080,
				TimeCreated:      now,
				TimeLastModified: now,
			},
		}},
	}
	return wb, nil
}

// GetWhiteboardByID returns the snapshot for a whiteboard id.
func (d *InMemory) GetWhiteboardByID(_ context.Context, id model.WhiteboardID) (*Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot, ok := d.whiteboards[id]
	if !ok {
		return nil, ErrNotFound
	}

	// deep-ish copy so hub mutations never alias the snapshot
	out := &Snapshot{Whiteboard: snapshot.Whiteboard}
	out.Canvases = make([]CanvasSnapshot, len(snapshot.Canvases))
	copy(out.Canvases, snapshot.Canvases)
	return out, nil
}

// SetSharedUsers replaces a whiteboard's permission list through the
// permission resolver. Rejections leave the stored list untouched.
func (d *InMemory) SetSharedUsers(ctx context.Context, whiteboardID model.WhiteboardID, actorID model.UserID, permissions []model.PermissionEntry) permission.Result {
	if _, err := uuid.Parse(whiteboardID); err != nil {
		return permission.Result{Status: permission.StatusError, Err: ErrInvalidID}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot, ok := d.whiteboards[whiteboardID]
	if !ok {
		return permission.Result{Status: permission.StatusError, Err: ErrNotFound}
	}

	result := permission.Apply(ctx, d.lockedDirectory(), snapshot.Whiteboard.Permissions, actorID, permissions)
	if result.Status == permission.StatusSuccess {
		snapshot.Whiteboard.Permissions = result.Permissions
	}
	return result
}

// lockedDirectory exposes the lookup capability without re-locking;
// SetSharedUsers already holds the mutex.
func (d *InMemory) lockedDirectory() permission.Directory {
	return lockedDir{d}
}

type lockedDir struct{ d *InMemory }

func (l lockedDir) FindUsersByEmail(_ context.Context, emails []string) (map[string]model.UserID, error) {
	found := make(map[string]model.UserID)
	for _, email := range emails {
		if id, ok := l.d.idsByEmail[email]; ok {
			found[email] = id
		}
	}
	return found, nil
}

func (l lockedDir) FilterUnknownUserIDs(_ context.Context, ids []model.UserID) ([]model.UserID, error) {
	var unknown []model.UserID
	for _, id := range ids {
		if _, ok := l.d.usersByID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}
