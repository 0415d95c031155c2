package core

// Owned is implemented by every record that belongs to a single user.
type Owned interface {
	Owner() string
}

// Authorize returns ErrNotFound unless caller owns rec. Records of other users
// are reported as missing so that their existence is not disclosed.
func Authorize[T Owned](rec T, caller string) error {
	if caller == "" {
		return ErrUnauthorized
	}
	if rec.Owner() != caller {
		return ErrNotFound
	}
	return nil
}
