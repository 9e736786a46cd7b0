// Package project locates project roots on the local filesystem. A project
// root is the nearest ancestor directory carrying a recognized marker such as
// a version control directory or an ecosystem manifest. Search results tagged
// with their project root can be boosted when the caller searches from within
// the same project.
package project
