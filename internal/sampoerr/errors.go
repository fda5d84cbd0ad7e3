// Package sampoerr defines the typed error taxonomy returned by the release
// engine. Each kind corresponds to a distinct recoverable condition a caller
// (CLI or otherwise) may want to branch on, so every error exposes a Kind()
// in addition to satisfying the standard error interface.
package sampoerr

import "fmt"

// Kind identifies one of the engine's recoverable error conditions.
type Kind string

const (
	KindNotInitialized     Kind = "not_initialized"
	KindNoPackagesFound    Kind = "no_packages_found"
	KindDuplicatePackage   Kind = "duplicate_package"
	KindInvalidConfig      Kind = "invalid_configuration"
	KindInvalidChangeset   Kind = "invalid_changeset"
	KindUnknownPackage     Kind = "unknown_package"
	KindAmbiguousPackage   Kind = "ambiguous_package"
	KindInvalidVersion     Kind = "invalid_version"
	KindConstraintViolated Kind = "constraint_violation"
	KindBranchNotAllowed   Kind = "branch_not_allowed"
	KindIoError            Kind = "io_error"
)

// Error is satisfied by every sentinel error type in this package.
type Error interface {
	error
	Kind() Kind
}

type NotInitializedError struct {
	Path string
}

func NewNotInitializedError(path string) *NotInitializedError {
	return &NotInitializedError{Path: path}
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("no .sampo directory found above %s", e.Path)
}

func (e *NotInitializedError) Kind() Kind { return KindNotInitialized }

type NoPackagesFoundError struct {
	Root string
}

func NewNoPackagesFoundError(root string) *NoPackagesFoundError {
	return &NoPackagesFoundError{Root: root}
}

func (e *NoPackagesFoundError) Error() string {
	return fmt.Sprintf("no packages detected under %s", e.Root)
}

func (e *NoPackagesFoundError) Kind() Kind { return KindNoPackagesFound }

type DuplicatePackageError struct {
	Id string
}

func NewDuplicatePackageError(id string) *DuplicatePackageError {
	return &DuplicatePackageError{Id: id}
}

func (e *DuplicatePackageError) Error() string {
	return fmt.Sprintf("package id %q discovered by more than one adapter", e.Id)
}

func (e *DuplicatePackageError) Kind() Kind { return KindDuplicatePackage }

type InvalidConfigError struct {
	Field   string
	Message string
	Cause   error
}

func NewInvalidConfigError(field, message string, cause error) *InvalidConfigError {
	return &InvalidConfigError{Field: field, Message: message, Cause: cause}
}

func (e *InvalidConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration (%s): %s", e.Field, e.Message)
}

func (e *InvalidConfigError) Unwrap() error { return e.Cause }
func (e *InvalidConfigError) Kind() Kind    { return KindInvalidConfig }

type InvalidChangesetError struct {
	Path    string
	Message string
	Cause   error
}

func NewInvalidChangesetError(path, message string, cause error) *InvalidChangesetError {
	return &InvalidChangesetError{Path: path, Message: message, Cause: cause}
}

func (e *InvalidChangesetError) Error() string {
	return fmt.Sprintf("invalid changeset %s: %s", e.Path, e.Message)
}

func (e *InvalidChangesetError) Unwrap() error { return e.Cause }
func (e *InvalidChangesetError) Kind() Kind    { return KindInvalidChangeset }

type UnknownPackageError struct {
	Ref  string
	Path string
}

func NewUnknownPackageError(ref, path string) *UnknownPackageError {
	return &UnknownPackageError{Ref: ref, Path: path}
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("changeset %s references unknown package %q", e.Path, e.Ref)
}

func (e *UnknownPackageError) Kind() Kind { return KindUnknownPackage }

type AmbiguousPackageError struct {
	Ref        string
	Path       string
	Candidates []string
}

func NewAmbiguousPackageError(ref, path string, candidates []string) *AmbiguousPackageError {
	return &AmbiguousPackageError{Ref: ref, Path: path, Candidates: candidates}
}

func (e *AmbiguousPackageError) Error() string {
	return fmt.Sprintf("changeset %s references ambiguous package %q, candidates: %v", e.Path, e.Ref, e.Candidates)
}

func (e *AmbiguousPackageError) Kind() Kind { return KindAmbiguousPackage }

type InvalidVersionError struct {
	Input   string
	Message string
}

func NewInvalidVersionError(input, message string) *InvalidVersionError {
	return &InvalidVersionError{Input: input, Message: message}
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Message)
}

func (e *InvalidVersionError) Kind() Kind { return KindInvalidVersion }

type ConstraintViolationError struct {
	Dependent  string
	Dependency string
	Constraint string
	ToVersion  string
}

func NewConstraintViolationError(dependent, dependency, constraint, toVersion string) *ConstraintViolationError {
	return &ConstraintViolationError{Dependent: dependent, Dependency: dependency, Constraint: constraint, ToVersion: toVersion}
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s requires %s %s but planned version is %s", e.Dependent, e.Dependency, e.Constraint, e.ToVersion)
}

func (e *ConstraintViolationError) Kind() Kind { return KindConstraintViolated }

type BranchNotAllowedError struct {
	Branch  string
	Allowed []string
}

func NewBranchNotAllowedError(branch string, allowed []string) *BranchNotAllowedError {
	return &BranchNotAllowedError{Branch: branch, Allowed: allowed}
}

func (e *BranchNotAllowedError) Error() string {
	return fmt.Sprintf("branch %q is not in the release allow-list %v", e.Branch, e.Allowed)
}

func (e *BranchNotAllowedError) Kind() Kind { return KindBranchNotAllowed }

type IoError struct {
	Path    string
	Message string
	Cause   error
}

func NewIoError(path, message string, cause error) *IoError {
	return &IoError{Path: path, Message: message, Cause: cause}
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io error: %s", e.Message)
	}
	return fmt.Sprintf("io error at %s: %s", e.Path, e.Message)
}

func (e *IoError) Unwrap() error { return e.Cause }
func (e *IoError) Kind() Kind    { return KindIoError }
