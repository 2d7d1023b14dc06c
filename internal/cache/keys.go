package cache

// Key derivation is deterministic so a URL path segment sequence maps 1:1 to
// a cache key. Document slugs must exactly match the slug field produced by
// the navigation builder.

// SnapshotKey addresses the full (project, version) bundle.
func SnapshotKey(project, version string) string {
	return "project:" + project + ":" + version
}

// NavKey addresses the navigation tree for a (project, version).
func NavKey(project, version string) string {
	return "nav:" + project + ":" + version
}

// DocKey addresses a single document.
func DocKey(project, version, docSlug string) string {
	return "doc:" + project + ":" + version + ":" + docSlug
}

// VersionListKey addresses the branch/tag list for a project. Versions live
// in a separate shorter-lived namespace decoupled from document content.
func VersionListKey(project string) string {
	return "versions:" + project
}
