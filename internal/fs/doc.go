// Package fs abstracts the file system operations the package builder needs,
// so that tests can inject write, sync and rename failures with FaultyFS.
package fs
