package presence_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/presence"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func TestActiveUsersListEachUsernameOnce(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	tr.RegisterClient("client-a", "ann", "wb1")
	users := tr.RegisterClient("client-b", "ben", "wb1")

	require.Len(t, users, 2)
	assert.Equal(t, model.Username("ann"), users[0].Username)
	assert.Equal(t, model.Username("ben"), users[1].Username)
}

func TestReconnectLooksLikeFreshRegistration(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	tr.RegisterClient("client-a", "ann", "wb1")
	tr.UnregisterClient("client-a")

	// new transport session, new client id, same account
	users := tr.RegisterClient("client-a2", "ann", "wb1")
	require.Len(t, users, 1)
	assert.Equal(t, model.ClientID("client-a2"), users[0].ClientID)
}

func TestUnregisterReleasesEditorMarkers(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	tr.RegisterClient("client-a", "ann", "wb1")
	tr.RegisterClient("client-b", "ben", "wb1")
	tr.SetCurrentEditor("wb1", "c1", "client-a")

	dep := tr.UnregisterClient("client-a")

	assert.Equal(t, model.Username("ann"), dep.Username)
	assert.Equal(t, []model.CanvasID{"c1"}, dep.ReleasedByBoard["wb1"])
	require.Len(t, dep.ActiveByBoard["wb1"], 1)
	assert.Equal(t, model.Username("ben"), dep.ActiveByBoard["wb1"][0].Username)

	_, held := tr.CurrentEditor("c1")
	assert.False(t, held)
}

func TestEditorMarkerIsLastWriteWins(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	tr.RegisterClient("client-a", "ann", "wb1")
	tr.RegisterClient("client-b", "ben", "wb1")

	tr.SetCurrentEditor("wb1", "c1", "client-a")
	tr.SetCurrentEditor("wb1", "c1", "client-b")

	editor, ok := tr.CurrentEditor("c1")
	require.True(t, ok)
	assert.Equal(t, model.ClientID("client-b"), editor)

	editors := tr.EditorsByWhiteboard("wb1")
	assert.Equal(t, model.ClientID("client-b"), editors["c1"])
}

func TestUnknownClientDepartureIsEmpty(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	dep := tr.UnregisterClient("ghost")
	assert.Empty(t, dep.Username)
	assert.Empty(t, dep.Whiteboards)
}

func TestColorsAreAssignedAndDistinct(t *testing.T) {
	tr := presence.NewTracker(newTestLogger())

	tr.RegisterClient("client-a", "ann", "wb1")
	tr.RegisterClient("client-b", "ben", "wb1")

	colorA := tr.Color("client-a")
	colorB := tr.Color("client-b")
	assert.NotEmpty(t, colorA)
	assert.NotEmpty(t, colorB)
	assert.NotEqual(t, colorA, colorB)
}
