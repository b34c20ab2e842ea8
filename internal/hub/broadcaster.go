package hub

import (
	"log/slog"
	"sync"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// BoardConnections is the minimum surface the broadcaster needs.
type BoardConnections interface {
	Sessions() map[model.ClientID]*Session
	Leave(clientID model.ClientID)
}

// Broadcaster fans a message out to every session on a board.
type Broadcaster struct {
	logger *slog.Logger
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{logger: logger.With("component", "broadcaster")}
}

// Broadcast encodes msg once and sends it to every session except the
// excluded client. Pass an empty exclude id to reach everyone.
func (b *Broadcaster) Broadcast(board BoardConnections, msg protocol.ServerMessage, exclude model.ClientID) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		b.logger.Error("encode broadcast", "error", err)
		return
	}
	b.BroadcastFrame(board, frame, exclude)
}

// BroadcastFrame sends a pre-encoded frame concurrently to all
// recipients, then evicts any session whose write failed.
func (b *Broadcaster) BroadcastFrame(board BoardConnections, frame []byte, exclude model.ClientID) {
	connections := board.Sessions()

	recipients := make([]*Session, 0, len(connections))
	for id, s := range connections {
		if id != exclude {
			recipients = append(recipients, s)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []*Session

	for _, s := range recipients {
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()

			if err := sess.Write(frame); err != nil {
				b.logger.Warn("broadcast write failed", "client_id", sess.ClientID, "error", err)
				mu.Lock()
				failed = append(failed, sess)
				mu.Unlock()
			}
		}(s)
	}

	wg.Wait()

	for _, s := range failed {
		board.Leave(s.ClientID)
		s.Close()
	}
}
