package entity

// Capability is the coarse access level of a caller.
type Capability int

const (
	CapabilityAnonymous Capability = iota
	CapabilityAuthenticated
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityAdmin:
		return "admin"
	case CapabilityAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Actor is the caller of a request as resolved by the auth layer.
type Actor struct {
	UserID  uint
	Email   string
	IsStaff bool
}

// AnonymousActor represents a request without credentials.
var AnonymousActor = Actor{}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != 0
}

func (a Actor) Capability() Capability {
	switch {
	case !a.IsAuthenticated():
		return CapabilityAnonymous
	case a.IsStaff:
		return CapabilityAdmin
	default:
		return CapabilityAuthenticated
	}
}

// ActorFromUser builds the actor for an authenticated user record.
func ActorFromUser(user *User) Actor {
	return Actor{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsActive && user.IsStaff,
	}
}
