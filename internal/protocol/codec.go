package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnknownType wraps ErrProtocol for frames whose type tag is not in
// the message set. Callers log and drop these without terminating the
// connection.
var ErrUnknownType = fmt.Errorf("%w: unknown message type", ErrProtocol)

// DecodeClient decodes an inbound frame into its typed client message.
// The type tag is peeked before the full unmarshal so unknown tags never
// cost a decode.
func DecodeClient(frame []byte) (ClientMessage, error) {
	if !gjson.ValidBytes(frame) {
		return nil, fmt.Errorf("%w: frame is not valid JSON", ErrProtocol)
	}

	tag := gjson.GetBytes(frame, "type")
	if !tag.Exists() || tag.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing message type", ErrProtocol)
	}

	var msg ClientMessage
	switch tag.String() {
	case TypeRegister:
		msg = &Register{}
	case TypeEditingCanvas:
		msg = &EditingCanvas{}
	case TypeCreateCanvas:
		msg = &CreateCanvas{}
	case TypeCreateShapes:
		msg = &CreateShapes{}
	case TypeUpdateShape:
		msg = &UpdateShape{}
	case TypeDeleteCanvases:
		msg = &DeleteCanvases{}
	case TypeUpdateAllowedUsers:
		msg = &UpdateAllowedUsers{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag.String())
	}

	if err := json.Unmarshal(frame, msg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal %s: %v", ErrProtocol, tag.String(), err)
	}
	return msg, nil
}

// DecodeServer decodes a server frame on the client side. Unknown tags
// return ErrUnknownType and must be ignored without error by callers.
func DecodeServer(frame []byte) (ServerMessage, error) {
	if !gjson.ValidBytes(frame) {
		return nil, fmt.Errorf("%w: frame is not valid JSON", ErrProtocol)
	}

	tag := gjson.GetBytes(frame, "type")
	if !tag.Exists() || tag.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing message type", ErrProtocol)
	}

	var msg ServerMessage
	switch tag.String() {
	case TypeInitClient:
		msg = &InitClient{}
	case TypeActiveUsersUpdate:
		msg = &ActiveUsersUpdate{}
	case TypeClientLogin:
		msg = &ClientLogin{}
	case TypeClientLogout:
		msg = &ClientLogout{}
	case TypeCanvasEditorsUpdate:
		msg = &CanvasEditorsUpdate{}
	case TypeCreateCanvas:
		msg = &CanvasCreated{}
	case TypeCreateShapes:
		msg = &ShapesCreated{}
	case TypeUpdateShape:
		msg = &ShapeUpdated{}
	case TypeDeleteCanvases:
		msg = &CanvasesDeleted{}
	case TypeUpdateAllowedUsers:
		msg = &AllowedUsersUpdated{}
	case TypeIndividualError:
		msg = &IndividualError{}
	case TypeBroadcastError:
		msg = &BroadcastError{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag.String())
	}

	if err := json.Unmarshal(frame, msg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal %s: %v", ErrProtocol, tag.String(), err)
	}
	return msg, nil
}

// Encode marshals an outbound message, filling in its type tag.
func Encode(msg ServerMessage) ([]byte, error) {
	stampType(msg)
	frame, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal server message: %w", err)
	}
	return frame, nil
}

// EncodeClient marshals a client → server message, filling in its type
// tag.
func EncodeClient(msg ClientMessage) ([]byte, error) {
	stampType(msg)
	frame, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal client message: %w", err)
	}
	return frame, nil
}

func stampType(msg any) {
	switch m := msg.(type) {
	case *Register:
		m.Type = TypeRegister
	case *EditingCanvas:
		m.Type = TypeEditingCanvas
	case *CreateCanvas:
		m.Type = TypeCreateCanvas
	case *CreateShapes:
		m.Type = TypeCreateShapes
	case *UpdateShape:
		m.Type = TypeUpdateShape
	case *DeleteCanvases:
		m.Type = TypeDeleteCanvases
	case *UpdateAllowedUsers:
		m.Type = TypeUpdateAllowedUsers
	case *InitClient:
		m.Type = TypeInitClient
	case *ActiveUsersUpdate:
		m.Type = TypeActiveUsersUpdate
	case *ClientLogin:
		m.Type = TypeClientLogin
	case *ClientLogout:
		m.Type = TypeClientLogout
	case *CanvasEditorsUpdate:
		m.Type = TypeCanvasEditorsUpdate
	case *CanvasCreated:
		m.Type = TypeCreateCanvas
	case *ShapesCreated:
		m.Type = TypeCreateShapes
	case *ShapeUpdated:
		m.Type = TypeUpdateShape
	case *CanvasesDeleted:
		m.Type = TypeDeleteCanvases
	case *AllowedUsersUpdated:
		m.Type = TypeUpdateAllowedUsers
	case *IndividualError:
		m.Type = TypeIndividualError
	case *BroadcastError:
		m.Type = TypeBroadcastError
	}
}
