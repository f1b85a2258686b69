package application

import (
	"fmt"
	"strings"
)

// Account pairs a user with its stored password hash.
type Account struct {
	User         User
	PasswordHash string
}

// Directory is an immutable in-memory user directory.
type Directory struct {
	accounts []Account
}

// NewDirectory builds a directory over accounts.
func NewDirectory(accounts ...Account) *Directory {
	return &Directory{accounts: append([]Account(nil), accounts...)}
}

type mockUser struct {
	user     User
	password string
}

var mockUsers = []mockUser{
	{User{ID: "1", Name: "Admin Antonelly", Email: "admin", Role: RoleAdmin, Sector: "Administração"}, "admin"},
	{User{ID: "2", Name: "João Silva", Email: "joao@antonelly.com", Role: RoleRegular, Sector: "RH"}, "user123"},
	{User{ID: "3", Name: "Maria Portaria", Email: "portaria@antonelly.com", Role: RoleStaff, Sector: "Portaria"}, "portaria123"},
}

// MockDirectory hashes the demo users' passwords with params.
func MockDirectory(params Argon2idParams) (*Directory, error) {
	accounts := make([]Account, 0, len(mockUsers))
	for _, m := range mockUsers {
		hash, err := CreatePasswordHash(m.password, params)
		if err != nil {
			return nil, fmt.Errorf("hash password for user %s: %w", m.user.ID, err)
		}
		accounts = append(accounts, Account{User: m.user, PasswordHash: hash})
	}
	return NewDirectory(accounts...), nil
}

// AccountByEmail looks an account up by login, ignoring case.
func (d *Directory) AccountByEmail(email string) (Account, bool) {
	if d == nil {
		return Account{}, false
	}
	for _, a := range d.accounts {
		if strings.EqualFold(a.User.Email, email) {
			return a, true
		}
	}
	return Account{}, false
}

// UserByID looks a user up by identifier.
func (d *Directory) UserByID(id string) (User, bool) {
	if d == nil {
		return User{}, false
	}
	for _, a := range d.accounts {
		if a.User.ID == id {
			return a.User, true
		}
	}
	return User{}, false
}

// Users returns every user in directory order.
func (d *Directory) Users() []User {
	if d == nil {
		return nil
	}
	users := make([]User, len(d.accounts))
	for i, a := range d.accounts {
		users[i] = a.User
	}
	return users
}

// EmailAddress returns the mailbox of userID. Logins that are not mail
// addresses, such as the admin's, report false.
func (d *Directory) EmailAddress(userID string) (string, bool) {
	user, ok := d.UserByID(userID)
	if !ok || !strings.Contains(user.Email, "@") {
		return "", false
	}
	return user.Email, true
}
