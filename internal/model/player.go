package model

// PlayerID is the store-assigned identifier of a player
type PlayerID int64

// Player is a registered account
type Player struct {
	ID               PlayerID
	Email            string // unique, compared exactly as stored
	Name             string
	Password         string // bcrypt hash, never plaintext
	PasswordAttempts int    // failed logins since the last success
	ResetPassword    bool   // player must choose a new password
	IsActive         bool
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	c := *p
	return &c
}

// PlayerUpdate carries the fields to overwrite on an existing player.
// A nil field is left untouched.
type PlayerUpdate struct {
	Email            *string
	Name             *string
	Password         *string // must already be hashed
	PasswordAttempts *int
	ResetPassword    *bool
	IsActive         *bool
}

// IsEmpty reports whether no field is supplied
func (u PlayerUpdate) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.Password == nil &&
		u.PasswordAttempts == nil && u.ResetPassword == nil && u.IsActive == nil
}

// ApplyTo overwrites the supplied fields on p
func (u PlayerUpdate) ApplyTo(p *Player) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Password != nil {
		p.Password = *u.Password
	}
	if u.PasswordAttempts != nil {
		p.PasswordAttempts = *u.PasswordAttempts
	}
	if u.ResetPassword != nil {
		p.ResetPassword = *u.ResetPassword
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}
