// Package config provides centralized default configuration values.
package config

import "regexp"

// DefaultIgnorePatterns is the canonical ordered list of regular expressions
// applied to root-relative, forward-slash paths. A path matching any entry
// is excluded from tracking entirely.
//
// Users can override via config.yaml: tracker.ignore_patterns. The project
// output directory is appended at startup in addition to this list.
var DefaultIgnorePatterns = []string{
	// Version control
	`(^|/)\.git(/|$)`,
	`(^|/)\.svn(/|$)`,
	`(^|/)\.hg(/|$)`,

	// Dependency and vendor directories
	`(^|/)node_modules(/|$)`,
	`(^|/)vendor(/|$)`,
	`(^|/)__pycache__(/|$)`,
	`(^|/)\.venv(/|$)`,

	// OS metadata
	`(^|/)\.DS_Store$`,
	`(^|/)Thumbs\.db$`,

	// Editor swap and backup files
	`~$`,
	`(^|/)#`,
	`\.swp$`,
	`\.swo$`,

	// Hidden cache directories
	`(^|/)\.cache(/|$)`,
	`(^|/)\.sass-cache(/|$)`,
	`(^|/)\.pytest_cache(/|$)`,
	`(^|/)\.mypy_cache(/|$)`,

	// Lock files
	`\.lock$`,
	`(^|/)package-lock\.json$`,
	`(^|/)yarn\.lock$`,
}

// OutputDirPattern builds the ignore expression for the configured build
// output directory.
func OutputDirPattern(outputDir string) string {
	return `^` + regexp.QuoteMeta(outputDir) + `(/|$)`
}
