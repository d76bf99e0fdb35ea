package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

// Typed outcomes of the library operations. Every failure is terminal
// for the single invocation and surfaced to the caller as one of these.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrOutOfStock       = errors.New("no copies available")
	ErrNothingToReturn  = errors.New("member has no borrowed books")
	ErrInvalidSelection = errors.New("selection out of range")
	ErrInvalidCopies    = errors.New("copies must be a non-negative number")
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)

type (
	ContextKey        string
	missingFieldError string
)

const (
	BookIDPrefix         string     = "B"
	MemberIDPrefix       string     = "M"
	RequestIDPrefix      string     = "r"
	ContextRequestID     ContextKey = "request.id"
	ContextRequestNumber ContextKey = "request.number"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(ContextRequestNumber); val != nil {
		return val.(uint64)
	}
	return 0
}

// ValidateCreateBookRequestBody checks the content of a book creation request.
func ValidateCreateBookRequestBody(req *CreateBookRequest) error {
	if len(strings.TrimSpace(req.Title)) == 0 {
		return missingFieldError("title")
	}

	if len(strings.TrimSpace(req.Author)) == 0 {
		return missingFieldError("author")
	}

	if req.Copies < 0 {
		return ErrInvalidCopies
	}

	return nil
}

// ValidateCreateMemberRequestBody checks the content of a member creation request.
func ValidateCreateMemberRequestBody(req *CreateMemberRequest) error {
	if len(strings.TrimSpace(req.Name)) == 0 {
		return missingFieldError("name")
	}

	if len(strings.TrimSpace(req.Email)) == 0 {
		return missingFieldError("email")
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
