package io

import (
	"context"
	"os"
	"sync"

	"github.com/OFFIS-RIT/migrascope/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOLoader reads files from the local filesystem and caches their content.
type IOLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewIOLoader() *IOLoader {
	return &IOLoader{
		cache: make(map[string][]byte),
	}
}

// Load accepts a plain path or a file:// location.
func (l *IOLoader) Load(ctx context.Context, location string) ([]byte, error) {
	_, path := loader.SplitLocation(location)

	l.cacheMu.RLock()
	if cached, ok := l.cache[path]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(path, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[path] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
