package application

// Role determines what a user may do with reservations owned by others.
type Role string

const (
	// RoleAdmin may cancel any reservation.
	RoleAdmin Role = "ADMIN"
	// RoleStaff is the front desk ("Portaria") and may cancel any reservation.
	RoleStaff Role = "PORTARIA"
	// RoleRegular may only act on their own reservations.
	RoleRegular Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleRegular:
		return true
	}
	return false
}

// User is an account able to book rooms.
type User struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	Sector string
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Name   string
	Role   Role
	Sector string
}

// PrincipalFor returns the principal acting as user.
func PrincipalFor(user User) Principal {
	return Principal{UserID: user.ID, Name: user.Name, Role: user.Role, Sector: user.Sector}
}

// canCancelOthers reports whether the principal may cancel reservations it does not own.
func (p Principal) canCancelOthers() bool {
	return p.Role == RoleAdmin || p.Role == RoleStaff
}

// CreateReservationInput captures caller provided reservation fields. Dates
// are YYYY-MM-DD and times HH:MM. An empty Sector defaults to the principal's.
type CreateReservationInput struct {
	RoomID      string `validate:"required"`
	Date        string `validate:"required"`
	StartTime   string `validate:"required"`
	EndTime     string `validate:"required"`
	Sector      string `validate:"max=60"`
	Title       string `validate:"required,max=120"`
	Description string `validate:"max=1000"`
}

// UpdateReservationPatch lists the fields to change. A nil or empty Date,
// StartTime, EndTime, Sector or Title keeps the stored value. A non-nil
// Description replaces the stored one, even when empty.
type UpdateReservationPatch struct {
	Date        *string
	StartTime   *string
	EndTime     *string
	Sector      *string `validate:"omitempty,max=60"`
	Title       *string `validate:"omitempty,max=120"`
	Description *string `validate:"omitempty,max=1000"`
}

// reschedules reports whether the patch moves the reservation in time.
func (p UpdateReservationPatch) reschedules() bool {
	return provided(p.Date) || provided(p.StartTime) || provided(p.EndTime)
}

func provided(v *string) bool {
	return v != nil && *v != ""
}

func valueOr(v *string, fallback string) string {
	if provided(v) {
		return *v
	}
	return fallback
}

// Session is an issued login token.
type Session struct {
	Token string
	User  User
}
