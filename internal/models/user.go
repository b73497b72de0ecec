package models

// User represents a device-local identity.
//
// There are no registered accounts: the first time a device needs an
// identity, one is synthesized with a generated id and persisted. Email is
// optional and may be empty for anonymous identities.
type User struct {
	// ID is the stable identifier for this device/identity ("dev_" prefix).
	ID string `json:"id"`

	// Username is the display name shown next to logged work.
	Username string `json:"username"`

	// Email is optional; when set it also identifies the person across
	// devices (see SamePerson).
	Email string `json:"email"`

	// PhotoDataURL is an inline data-URL avatar, possibly empty.
	PhotoDataURL string `json:"photoDataUrl"`
}

// SamePerson reports whether two identities refer to the same person:
// matching ids, or matching non-empty emails. This is the single membership
// identity rule used for joins, member dedup and log attribution.
func SamePerson(id, email, otherID, otherEmail string) bool {
	if id != "" && id == otherID {
		return true
	}
	return email != "" && email == otherEmail
}

// IsAuthor reports whether the given log was written by this user.
func (u User) IsAuthor(log WorkLog) bool {
	return SamePerson(u.ID, u.Email, log.MemberID, log.MemberEmail)
}
