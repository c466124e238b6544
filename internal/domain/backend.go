package domain

import "fmt"

// BackendErrorKind names a variant of the recipe backend's error enum.
type BackendErrorKind string

const (
	UserNotFound        BackendErrorKind = "UserNotFound"
	UserAlreadyExists   BackendErrorKind = "UserAlreadyExists"
	RecipesNotFound     BackendErrorKind = "RecipesNotFound"
	InvalidName         BackendErrorKind = "InvalidName"
	CallerNotAuthorized BackendErrorKind = "CallerNotAuthorized"
	RecipeNotFound      BackendErrorKind = "RecipeNotFound"
	ImageNotDownloaded  BackendErrorKind = "ImageNotDownloaded"
	RecipeAlreadyExists BackendErrorKind = "RecipeAlreadyExists"
)

// BackendError is the Err arm of a backend result: {<kind>: {msg}}.
type BackendError struct {
	Kind BackendErrorKind
	Msg  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// DeleteResult is the backend's {Ok: string} | {Err: BackendError} reply to
// delete operations. Exactly one arm is set.
type DeleteResult struct {
	Ok  *string
	Err *BackendError
}

// DeleteOk builds a successful result.
func DeleteOk(msg string) DeleteResult {
	return DeleteResult{Ok: &msg}
}

// DeleteErr builds a failed result.
func DeleteErr(kind BackendErrorKind, msg string) DeleteResult {
	return DeleteResult{Err: &BackendError{Kind: kind, Msg: msg}}
}

// Validate checks that exactly one arm is set.
func (r DeleteResult) Validate() error {
	if (r.Ok == nil) == (r.Err == nil) {
		return ErrMalformedResult
	}
	return nil
}

// User is a registered recipe author.
type User struct {
	// ID is the principal of the user's identity.
	ID   string
	Name string
}

// RecipeBrief is the summary shown in recipe listings.
type RecipeBrief struct {
	Name         string
	Tags         []string
	TotalMinutes int
	Author       string
}
