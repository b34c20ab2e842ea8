// Package hub keeps the authoritative live state of every open
// whiteboard and fans server messages out to attached sessions.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/directory"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Hub manages all open boards, loading each from the snapshot service
// the first time a session asks for it.
type Hub struct {
	mu      sync.RWMutex
	boards  map[model.WhiteboardID]*Board
	service directory.Service
	logger  *slog.Logger

	maxBoards int
}

func New(service directory.Service, maxBoards int, logger *slog.Logger) *Hub {
	return &Hub{
		boards:    make(map[model.WhiteboardID]*Board),
		service:   service,
		logger:    logger.With("component", "hub"),
		maxBoards: maxBoards,
	}
}

// GetOrLoad returns the live board for a whiteboard id, fetching its
// snapshot from the directory service on first access.
func (h *Hub) GetOrLoad(ctx context.Context, id model.WhiteboardID) (*Board, error) {
	h.mu.RLock()
	board, ok := h.boards[id]
	h.mu.RUnlock()
	if ok {
		return board, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// re-check under the write lock
	if board, ok := h.boards[id]; ok {
		return board, nil
	}

	if len(h.boards) >= h.maxBoards {
		return nil, errors.New("server at maximum whiteboard capacity")
	}

	snapshot, err := h.service.GetWhiteboardByID(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) || errors.Is(err, directory.ErrInvalidID) {
			return nil, fmt.Errorf("%w: whiteboard %s", protocol.ErrInvalidReference, id)
		}
		return nil, fmt.Errorf("load whiteboard %s: %w", id, err)
	}

	board = newBoard(snapshot)
	h.boards[id] = board
	h.logger.Info("whiteboard loaded", "whiteboard_id", id, "canvases", len(snapshot.Canvases))
	return board, nil
}

// Get returns a board only if it is already open.
func (h *Hub) Get(id model.WhiteboardID) (*Board, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	board, ok := h.boards[id]
	return board, ok
}

// BoardCount returns the number of open boards.
func (h *Hub) BoardCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.boards)
}

// Cleanup drops boards that have sat empty past idleExpiry or have
// been open longer than maxAge.
func (h *Hub) Cleanup(idleExpiry, maxAge time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, board := range h.boards {
		board.mu.RLock()
		empty := len(board.sessions) == 0
		idle := now.Sub(board.lastActive) > idleExpiry
		aged := now.Sub(board.createdAt) > maxAge
		board.mu.RUnlock()

		if (empty && idle) || aged {
			delete(h.boards, id)
			h.logger.Info("whiteboard unloaded", "whiteboard_id", id, "empty", empty, "aged", aged)
		}
	}
}
