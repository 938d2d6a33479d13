package types

import "net/http"

// Access is the permission level a request needs. It is resolved once per
// request and read by the auth middleware.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	// AccessPublic is a write anonymous callers may perform, such as
	// registration and login.
	AccessPublic
)

func AccessFromMethod(method string) Access {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return AccessRead
	default:
		return AccessWrite
	}
}

// AllowsAnonymous reports whether a caller without a token may proceed.
func (a Access) AllowsAnonymous() bool {
	return a == AccessRead || a == AccessPublic
}

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessPublic:
		return "public"
	default:
		return "write"
	}
}
