package domain

// ProfileInvalidator drops cached public profiles. Renames and account deletion
// call it with the usernames read from storage.
type ProfileInvalidator interface {
	Invalidate(username string)
}
