package aggregates

import (
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/domain/user"
)

// Identity is the caller as authenticated at the edge. Role is advisory:
// aggregates reload the user inside their transaction and authorize against
// the stored role.
type Identity struct {
	UserID uuid.UUID
	Role   user.Role
}

func (i Identity) IsZero() bool { return i.UserID == uuid.Nil }
