// Package middleware holds the connection and message rate limits
// applied at the transport boundary.
package middleware

// ShapeCounter counts the shapes of a canvas (avoids an import cycle
// with hub).
type ShapeCounter interface {
	ShapeCount() int
}

// Limits holds the server's capacity and rate limits.
type Limits struct {
	MaxWhiteboards      int
	MaxSessionsPerBoard int
	MaxShapesPerCanvas  int
	MaxMessageSize      int
	MessagesPerSecond   float64
	BurstSize           int
}

// CanAddShapes checks whether a canvas has room for n more shapes.
func (l *Limits) CanAddShapes(counter ShapeCounter, n int) bool {
	return counter.ShapeCount()+n <= l.MaxShapesPerCanvas
}

// ValidateMessageSize checks whether a frame is within the size limit.
func (l *Limits) ValidateMessageSize(msgSize int) bool {
	return msgSize <= l.MaxMessageSize
}
