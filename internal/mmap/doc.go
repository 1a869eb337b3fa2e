// Package mmap maps package files read-only into memory.
//
// On unix platforms files are mapped with MAP_SHARED via golang.org/x/sys/unix
// and the pages are shared with the OS page cache. Elsewhere the file is read
// into the heap; callers see the same API.
package mmap
