package program

import (
	"os"
	"sync"
	"time"

	"github.com/toyz/ngreflect/internal/jsast"
)

// cacheItem is a parsed file plus the stat data it was parsed from
type cacheItem struct {
	file    *jsast.SourceFile
	modTime time.Time
	size    int64
}

// fileCache keeps parsed files keyed by path. An entry is only served while
// the file on disk still has the recorded mtime and size.
type fileCache struct {
	items map[string]*cacheItem
	mutex sync.RWMutex
}

func newFileCache() *fileCache {
	return &fileCache{
		items: make(map[string]*cacheItem),
	}
}

// get returns the cached file for path if the file has not changed since it
// was stored. Stale entries are evicted.
func (c *fileCache) get(path string, stat os.FileInfo) (*jsast.SourceFile, bool) {
	c.mutex.RLock()
	item, exists := c.items[path]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	if stat.ModTime().Equal(item.modTime) && stat.Size() == item.size {
		return item.file, true
	}

	c.mutex.Lock()
	delete(c.items, path)
	c.mutex.Unlock()

	return nil, false
}

func (c *fileCache) set(path string, file *jsast.SourceFile, stat os.FileInfo) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[path] = &cacheItem{
		file:    file,
		modTime: stat.ModTime(),
		size:    stat.Size(),
	}
}

func (c *fileCache) len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
