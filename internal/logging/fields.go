// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package logging

// Structured field names.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldWorkingDir = "working_dir"
	FieldRevision   = "rev"
	FieldJobs       = "jobs"

	FieldFilesDiscovered = "files_discovered"
	FieldFilesParsed     = "files_parsed"
	FieldFilesRaw        = "files_raw"
	FieldCacheHits       = "cache_hits"
	FieldDeclarations    = "declarations"
	FieldTokens          = "tokens"

	FieldVersion = "version"
)
