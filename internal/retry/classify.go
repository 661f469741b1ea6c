// ABOUTME: Error classification for remote calls (transient, credential-missing, terminal)
// ABOUTME: Reads status, name, and message off opaque errors to decide whether a retry can help
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Class is the retry classification of an error
type Class int

const (
	// Terminal errors are returned to the caller on first occurrence
	Terminal Class = iota
	// Transient errors are retried with backoff while attempts remain
	Transient
	// CredentialMissing errors trigger a credential refresh before the retry decision
	CredentialMissing
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case Terminal:
		return "terminal"
	case Transient:
		return "transient"
	case CredentialMissing:
		return "credential_missing"
	default:
		return "unknown"
	}
}

// credentialMissingMessage is what the Gemini API returns for an unknown or revoked key
const credentialMissingMessage = "requested entity was not found"

// StatusError carries the HTTP-like shape of a remote failure
type StatusError struct {
	Status int    // HTTP-like status code, 0 when absent
	Name   string // error type name reported by the remote, e.g. "AbortError"
	Err    error
}

func (e *StatusError) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Status != 0 && msg != "":
		return fmt.Sprintf("status %d: %s", e.Status, msg)
	case e.Status != 0:
		return fmt.Sprintf("status %d", e.Status)
	case e.Name != "" && msg != "":
		return e.Name + ": " + msg
	case e.Name != "":
		return e.Name
	default:
		return msg
	}
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusCode returns the remote status code
func (e *StatusError) StatusCode() int {
	return e.Status
}

// ErrorName returns the remote error name
func (e *StatusError) ErrorName() string {
	return e.Name
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Classify reports it as Terminal whatever its message says
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Classify maps an opaque error onto a Class
func Classify(err error) Class {
	if err == nil || IsPermanent(err) {
		return Terminal
	}
	if IsCredentialMissing(err) {
		return CredentialMissing
	}
	if IsTransient(err) {
		return Transient
	}
	return Terminal
}

// IsCredentialMissing reports whether err says the stored credential is absent or invalid
func IsCredentialMissing(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}
	if statusOf(err) == 404 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), credentialMissingMessage)
}

// IsTransient reports whether err carries a transient signature: a 429 or 5xx
// status, an abort, or a network-class failure. It ignores the credential check.
func IsTransient(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}

	status := statusOf(err)
	if status == 429 || (status >= 500 && status <= 599) {
		return true
	}

	if strings.Contains(strings.ToLower(nameOf(err)), "abort") {
		return true
	}

	// An attempt that hit its own deadline is the Go form of an aborted fetch
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "fetch") || strings.Contains(msg, "network")
}

func statusOf(err error) int {
	var s interface{ StatusCode() int }
	if errors.As(err, &s) {
		return s.StatusCode()
	}
	return 0
}

func nameOf(err error) string {
	var n interface{ ErrorName() string }
	if errors.As(err, &n) {
		return n.ErrorName()
	}
	return ""
}
