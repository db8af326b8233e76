// Package errors provides sentinel errors for corpus discovery operations.
// These enable consistent classification of scan failures across build stages.
package errors

import "errors"

var (
	// ErrContentRootNotFound indicates the configured content root does not exist.
	ErrContentRootNotFound = errors.New("content root not found")

	// ErrContentRootNotDir indicates the configured content root is not a directory.
	ErrContentRootNotDir = errors.New("content root is not a directory")

	// ErrWalkFailed indicates filesystem traversal of the content root failed.
	ErrWalkFailed = errors.New("content root walk failed")

	// ErrFileReadFailed indicates reading content from a discovered page failed.
	ErrFileReadFailed = errors.New("page read failed")

	// ErrFrontmatterInvalid indicates a page's frontmatter could not be parsed.
	ErrFrontmatterInvalid = errors.New("page frontmatter invalid")

	// ErrNoPagesFound indicates the content root contains no guide pages.
	ErrNoPagesFound = errors.New("no guide pages found")

	// ErrInvalidRelativePath indicates calculating a path relative to the content root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
