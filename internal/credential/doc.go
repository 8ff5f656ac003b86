// Package credential implements the credential lifecycle state machine:
// cache lookup, validity and scope-coverage checks, silent refresh, and
// consent flow fallback.
//
// The Manager is the single entry point and the sole caller of the other
// components. One Obtain call makes at most one store write, at most one
// refresh network call, and at most one consent launch; refresh failures
// are absorbed into the consent fallback, while configuration errors and
// consent failures propagate to the caller with the failing
// identity/api/profile triple named.
package credential
