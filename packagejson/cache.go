/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package packagejson

// Cache memoizes parsed package.json files by file path, so discovery and
// the compilation-database command parse each manifest at most once per
// process. The build driver is single-threaded cooperative — the only
// suspension points are I/O — so a plain map is the whole implementation.
type Cache struct {
	entries map[string]*PackageJSON
}

// NewCache creates an empty manifest cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*PackageJSON)}
}

// Load returns the manifest for path, invoking loader the first time the
// path is seen. Failed loads are not memoized: the next Load retries, so
// a manifest fixed between runs of a long-lived process parses cleanly.
func (c *Cache) Load(path string, loader func() (*PackageJSON, error)) (*PackageJSON, error) {
	if pkg, ok := c.entries[path]; ok {
		return pkg, nil
	}
	pkg, err := loader()
	if err != nil {
		return nil, err
	}
	c.entries[path] = pkg
	return pkg, nil
}
