package gitsync

import (
	"context"
	"errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// classify translates go-git failures into categorized errors so the
// daemon can distinguish retryable network trouble from configuration
// problems. Typed transport errors are preferred; the string fallback
// covers what go-git only reports as text.
func classify(op, url string, err error) error {
	if err == nil {
		return nil
	}
	// Cancellation is not a git failure; let callers see it as-is.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return guideerr.GitAuthError(url, err).WithContext("op", op)
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return guideerr.GitNotFoundError(url, err).WithContext("op", op)
	}

	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") ||
		strings.Contains(l, "authorization") ||
		strings.Contains(l, "invalid credentials") ||
		strings.Contains(l, "could not read username"):
		return guideerr.GitAuthError(url, err).WithContext("op", op)
	case strings.Contains(l, "not found") ||
		strings.Contains(l, "does not exist"):
		return guideerr.GitNotFoundError(url, err).WithContext("op", op)
	case strings.Contains(l, "connection refused") ||
		strings.Contains(l, "connection reset") ||
		strings.Contains(l, "timeout") ||
		strings.Contains(l, "no route to host") ||
		strings.Contains(l, "temporary failure") ||
		strings.Contains(l, "remote hung up"):
		return guideerr.GitNetworkError(url, err).WithContext("op", op)
	default:
		return guideerr.WrapError(err, guideerr.CategoryGit, "git "+op+" failed").
			WithContext("url", url)
	}
}
