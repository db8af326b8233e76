package guideerr

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *GuideError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *GuideError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *GuideError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *GuideError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func WorkspaceError(operation string, cause error) *GuideError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

func ScanError(cause error) *GuideError {
	return Wrap(cause, CategoryContent, SeverityFatal, "corpus scan failed")
}

func NavError(path string, cause error) *GuideError {
	return Wrap(cause, CategoryNav, SeverityFatal, "navigation resolution failed").
		WithContext("path", path)
}

func RenderError(page string, cause error) *GuideError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page render failed").
		WithContext("page", page)
}

// Git errors

func GitCloneError(repo string, cause error) *GuideError {
	return Wrap(cause, CategoryGit, SeverityFatal, "repository clone failed").
		WithContext("repository", repo)
}

func GitAuthError(repo string, cause error) *GuideError {
	return Wrap(cause, CategoryAuth, SeverityFatal, "git authentication failed").
		WithContext("repository", repo)
}

func GitNetworkError(repo string, cause error) *GuideError {
	return WrapRetryable(cause, CategoryGit, SeverityWarning, "git network error").
		WithContext("repository", repo)
}

func GitNotFoundError(repo string, cause error) *GuideError {
	return Wrap(cause, CategoryNotFound, SeverityFatal, "repository not found").
		WithContext("repository", repo)
}

// Network errors

func NetworkTimeout(url string, cause error) *GuideError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "network timeout").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *GuideError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
