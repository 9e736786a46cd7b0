// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package project

import (
	"os"
	"path/filepath"
)

// rootMarkers are the filenames and directory names that identify a project
// root, across version control systems and language ecosystems. Checked in
// order at each ancestor; the nearest ancestor with any marker wins.
var rootMarkers = []string{
	// Version control
	".git",
	".hg",
	".svn",
	// Ecosystem manifests
	"pyproject.toml",
	"package.json",
	"Cargo.toml",
	"go.mod",
	"pom.xml",
	"build.gradle",
	"CMakeLists.txt",
	"composer.json",
	"Gemfile",
	// IDE projects
	".project",
}

// maxAscents bounds the upward walk as a guard against pathological
// filesystems (cyclic bind mounts, very deep trees).
const maxAscents = 64

// FindRoot walks upward from path looking for a project root marker.
// It returns the nearest ancestor directory containing one, and whether a
// root was found. Filesystem errors degrade to "not found", never an error.
func FindRoot(path string) (string, bool) {
	dir, ok := normalizeStart(path)
	if !ok {
		return "", false
	}

	for i := 0; i < maxAscents; i++ {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Filesystem root.
			break
		}
		dir = parent
	}
	return "", false
}

// Name returns the base name of a project root path, or "" for empty input.
func Name(rootPath string) string {
	if rootPath == "" {
		return ""
	}
	return filepath.Base(rootPath)
}

// SameProject reports whether two paths resolve to the same location.
// Empty inputs and resolution failures report false.
func SameProject(path1, path2 string) bool {
	if path1 == "" || path2 == "" {
		return false
	}
	r1, err := filepath.EvalSymlinks(path1)
	if err != nil {
		return false
	}
	r2, err := filepath.EvalSymlinks(path2)
	if err != nil {
		return false
	}
	a1, err := filepath.Abs(r1)
	if err != nil {
		return false
	}
	a2, err := filepath.Abs(r2)
	if err != nil {
		return false
	}
	return a1 == a2
}

// normalizeStart converts arbitrary input into the directory to begin the
// upward walk from. Files start from their containing directory. Paths that
// do not exist fall back on an extension heuristic: with an extension the
// input is treated as a file, without one as a directory.
func normalizeStart(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err == nil {
		if info.IsDir() {
			return abs, true
		}
		return filepath.Dir(abs), true
	}
	if os.IsNotExist(err) {
		if filepath.Ext(abs) != "" {
			return filepath.Dir(abs), true
		}
		return abs, true
	}
	return "", false
}
