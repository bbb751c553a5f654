package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aanand-mishra/ugs-portal/internal/types"
)

// ErrUnrecognizedShape is returned when a response body matches none of the
// shapes the API is known to send.
var ErrUnrecognizedShape = errors.New("api: unrecognized response shape")

// AuthShape tells which of the API's login response formats was received.
type AuthShape int

const (
	// ShapeCurrent: {"id": 1, "role": "org_admin", "token": "...", "data": {...}}
	ShapeCurrent AuthShape = iota + 1
	// ShapeLegacy: {"token" | "access_token": "...", "user": {...}}
	ShapeLegacy
)

func (s AuthShape) String() string {
	switch s {
	case ShapeCurrent:
		return "current"
	case ShapeLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// AuthResult is a decoded login or register response.
type AuthResult struct {
	Shape AuthShape
	Token string
	User  types.User
}

// DecodeAuth decodes a login/register body, rejecting anything that is
// neither the current nor the legacy format.
func DecodeAuth(data []byte) (AuthResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	tokenRaw, hasToken := fields["token"]
	_, hasData := fields["data"]
	_, hasID := fields["id"]
	_, hasRole := fields["role"]

	if hasToken && hasData && (hasID || hasRole) {
		var body struct {
			ID    int64      `json:"id"`
			Role  string     `json:"role"`
			Token string     `json:"token"`
			Data  types.User `json:"data"`
		}
		if err := json.Unmarshal(data, &body); err != nil || body.Token == "" {
			return AuthResult{}, fmt.Errorf("%w: current auth format", ErrUnrecognizedShape)
		}
		user := body.Data
		if hasID {
			user.ID = body.ID
		}
		if hasRole {
			user.Role = body.Role
		}
		return AuthResult{Shape: ShapeCurrent, Token: body.Token, User: user}, nil
	}

	userRaw, hasUser := fields["user"]
	if !hasToken {
		tokenRaw, hasToken = fields["access_token"]
	}
	if hasUser && hasToken {
		var tok string
		var user types.User
		if json.Unmarshal(tokenRaw, &tok) != nil || tok == "" || json.Unmarshal(userRaw, &user) != nil {
			return AuthResult{}, fmt.Errorf("%w: legacy auth format", ErrUnrecognizedShape)
		}
		return AuthResult{Shape: ShapeLegacy, Token: tok, User: user}, nil
	}

	return AuthResult{}, ErrUnrecognizedShape
}

// DecodeUser accepts {"data": {...}}, {"user": {...}} or a bare user object.
// In every form the user must be an object with a non-null "id".
func DecodeUser(data []byte) (types.User, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return types.User{}, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}
	var user types.User
	for _, key := range []string{"data", "user"} {
		if raw, ok := fields[key]; ok {
			if err := objectWithID(raw, &user); err != nil {
				return types.User{}, fmt.Errorf("%s: %w", key, err)
			}
			return user, nil
		}
	}
	if err := objectWithID(data, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// objectWithID decodes raw into out when raw is a JSON object carrying a
// non-null "id".
func objectWithID(raw []byte, out any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: not an object", ErrUnrecognizedShape)
	}
	if id, ok := fields["id"]; !ok || string(id) == "null" {
		return fmt.Errorf("%w: object has no id", ErrUnrecognizedShape)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}
	return nil
}

// DecodeList accepts a bare JSON array or a {"data": [...]} envelope.
func DecodeList[T any](data []byte) ([]T, error) {
	out := make([]T, 0)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
		}
		return out, nil
	}

	var env struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Data == nil {
		return nil, ErrUnrecognizedShape
	}
	raw := []byte(*env.Data)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: data is not a list", ErrUnrecognizedShape)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}
	return out, nil
}

// DecodeRecord accepts a {"data": {...}} envelope or a bare object. Either
// way the record must carry a non-null "id".
func DecodeRecord[T any](data []byte) (T, error) {
	var zero T
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	src := data
	if raw, ok := fields["data"]; ok {
		src = raw
	}
	var out T
	if err := objectWithID(src, &out); err != nil {
		return zero, err
	}
	return out, nil
}
