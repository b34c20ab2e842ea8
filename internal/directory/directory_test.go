package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/directory"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/permission"
)

func TestCreateWhiteboardSeedsDefaultCanvas(t *testing.T) {
	dir := directory.NewInMemory()
	ownerID := dir.AddUser("ann", "ann@example.com")

	wb, err := dir.CreateWhiteboard(context.Background(), "Sprint Planning", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint Planning", wb.Name)
	require.Len(t, wb.Permissions, 1)
	assert.Equal(t, model.RoleOwn, wb.Permissions[0].Role)
	assert.Equal(t, ownerID, wb.Permissions[0].UserID)

	snap, err := dir.GetWhiteboardByID(context.Background(), wb.ID)
	require.NoError(t, err)
	require.Len(t, snap.Canvases, 1)
	canvas := snap.Canvases[0].Canvas
	assert.Equal(t, "Canvas 1", canvas.Name)
	assert.Equal(t, 1920.0, canvas.Width)
	assert.Equal(t, 1080.0, canvas.Height)
	assert.Empty(t, snap.Canvases[0].Shapes)
}

func TestGetWhiteboardByIDRejectsBadIDs(t *testing.T) {
	dir := directory.NewInMemory()

	_, err := dir.GetWhiteboardByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, directory.ErrInvalidID)

	_, err = dir.GetWhiteboardByID(context.Background(), model.WhiteboardID(uuid.NewString()))
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestGetWhiteboardByIDCopiesSnapshot(t *testing.T) {
	dir := directory.NewInMemory()
	ownerID := dir.AddUser("ann", "ann@example.com")
	wb, err := dir.CreateWhiteboard(context.Background(), "Retro", ownerID)
	require.NoError(t, err)

	first, err := dir.GetWhiteboardByID(context.Background(), wb.ID)
	require.NoError(t, err)
	first.Canvases[0].Canvas.Name = "scribbled over"

	second, err := dir.GetWhiteboardByID(context.Background(), wb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canvas 1", second.Canvases[0].Canvas.Name)
}

func TestSetSharedUsersRequiresOwner(t *testing.T) {
	dir := directory.NewInMemory()
	ownerID := dir.AddUser("ann", "ann@example.com")
	editorID := dir.AddUser("bob", "bob@example.com")
	wb, err := dir.CreateWhiteboard(context.Background(), "Retro", ownerID)
	require.NoError(t, err)

	result := dir.SetSharedUsers(context.Background(), wb.ID, editorID, []model.PermissionEntry{
		{Type: model.PermissionByUser, UserID: editorID, Role: model.RoleOwn},
	})
	assert.Equal(t, permission.StatusForbidden, result.Status)

	// rejected updates leave the stored list untouched
	snap, err := dir.GetWhiteboardByID(context.Background(), wb.ID)
	require.NoError(t, err)
	require.Len(t, snap.Whiteboard.Permissions, 1)
	assert.Equal(t, ownerID, snap.Whiteboard.Permissions[0].UserID)
}

func TestSetSharedUsersResolvesAndStores(t *testing.T) {
	dir := directory.NewInMemory()
	ownerID := dir.AddUser("ann", "ann@example.com")
	bobID := dir.AddUser("bob", "bob@example.com")
	wb, err := dir.CreateWhiteboard(context.Background(), "Retro", ownerID)
	require.NoError(t, err)

	result := dir.SetSharedUsers(context.Background(), wb.ID, ownerID, []model.PermissionEntry{
		{Type: model.PermissionByUser, UserID: ownerID, Role: model.RoleOwn},
		{Type: model.PermissionByEmail, Email: "bob@example.com", Role: model.RoleEdit},
	})
	require.Equal(t, permission.StatusSuccess, result.Status)
	require.Len(t, result.Permissions, 2)
	assert.Equal(t, bobID, result.Permissions[1].UserID)

	snap, err := dir.GetWhiteboardByID(context.Background(), wb.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Permissions, snap.Whiteboard.Permissions)
}

func TestSetSharedUsersUnknownWhiteboard(t *testing.T) {
	dir := directory.NewInMemory()
	ownerID := dir.AddUser("ann", "ann@example.com")

	result := dir.SetSharedUsers(context.Background(), model.WhiteboardID(uuid.NewString()), ownerID, []model.PermissionEntry{
		{Type: model.PermissionByUser, UserID: ownerID, Role: model.RoleOwn},
	})
	assert.Equal(t, permission.StatusError, result.Status)
	assert.ErrorIs(t, result.Err, directory.ErrNotFound)
}
