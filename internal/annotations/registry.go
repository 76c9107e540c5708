package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/ngreflect/internal/reflection"
)

// Extractor converts a matched class into category-specific metadata
type Extractor interface {
	Extract(host *reflection.Host, class *DecoratedClass) (interface{}, error)
}

// ExtractorFunc adapts a function to an Extractor
type ExtractorFunc func(host *reflection.Host, class *DecoratedClass) (interface{}, error)

// Extract calls f
func (f ExtractorFunc) Extract(host *reflection.Host, class *DecoratedClass) (interface{}, error) {
	return f(host, class)
}

// ExtractorRegistry defines the interface for managing per-category extractors
type ExtractorRegistry interface {
	// Register adds the extractor of a category
	Register(category Category, extractor Extractor) error

	// Get retrieves the extractor of a category
	Get(category Category) (Extractor, bool)

	// Categories returns the registered categories in processing order
	Categories() []Category
}

// registry is the concrete implementation of ExtractorRegistry
type registry struct {
	mu         sync.RWMutex
	extractors map[Category]Extractor
}

// NewRegistry creates an empty extractor registry
func NewRegistry() ExtractorRegistry {
	return &registry{
		extractors: make(map[Category]Extractor),
	}
}

// Register adds the extractor of a category. Each category takes one
// extractor.
func (r *registry) Register(category Category, extractor Extractor) error {
	if extractor == nil {
		return fmt.Errorf("extractor for %s cannot be nil", category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extractors[category]; exists {
		return fmt.Errorf("category %s already has an extractor", category)
	}

	r.extractors[category] = extractor
	return nil
}

// Get retrieves the extractor of a category
func (r *registry) Get(category Category) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extractor, exists := r.extractors[category]
	return extractor, exists
}

// Categories returns the registered categories in processing order
func (r *registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]Category, 0, len(r.extractors))
	for category := range r.extractors {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	return categories
}
