package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shortcut-cli/sc/cache"
	"github.com/shortcut-cli/sc/pkg/logger"
)

// CustomFields resolves a custom field name and one of its value names to their ids.
func (r *Resolvers) CustomFields() *CustomFieldResolver {
	return &CustomFieldResolver{r: r, lggr: r.lggr}
}

// CustomFieldResolver resolves custom field name/value pairs.
type CustomFieldResolver struct {
	r    *Resolvers
	lggr logger.Logger

	mu     sync.Mutex
	fields map[string]string // field name -> field id
	values map[string]string // field name/value name -> value id
}

// Resolve returns the field id and value id for the given names.
func (c *CustomFieldResolver) Resolve(ctx context.Context, field, value string) (string, string, error) {
	fieldKey := normalize(field)
	valueKey := fieldKey + "/" + normalize(value)

	fieldID, ferr := c.r.store.Get(cache.KindCustomField, fieldKey)
	valueID, verr := c.r.store.Get(cache.KindCustomFieldValue, valueKey)
	if ferr == nil && verr == nil {
		return fieldID, valueID, nil
	}
	for _, err := range []error{ferr, verr} {
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			return "", "", fmt.Errorf("failed to read custom field cache: %w", err)
		}
	}
	if c.r.offline {
		return field, value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fields == nil {
		if err := c.load(ctx); err != nil {
			return "", "", err
		}
	}

	fieldID, ok := c.fields[fieldKey]
	if !ok {
		return "", "", fmt.Errorf("custom field %q: %w", field, ErrNotFound)
	}
	valueID, ok = c.values[valueKey]
	if !ok {
		return "", "", fmt.Errorf("custom field %q value %q: %w", field, value, ErrNotFound)
	}

	return fieldID, valueID, nil
}

func (c *CustomFieldResolver) load(ctx context.Context) error {
	c.lggr.Debugw("Cache miss, listing from API", "kind", cache.KindCustomField)
	fields, err := c.r.src.ListCustomFields(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", cache.KindCustomField, err)
	}

	c.fields = make(map[string]string, len(fields))
	c.values = map[string]string{}
	for _, f := range fields {
		fk := normalize(f.Name)
		c.fields[fk] = f.ID
		for _, v := range f.Values {
			c.values[fk+"/"+normalize(v.Value)] = v.ID
		}
	}

	if err := c.persist(); err != nil {
		c.lggr.Warnw("Failed to write cache", "kind", cache.KindCustomField, "error", err)
	}

	return nil
}

func (c *CustomFieldResolver) persist() error {
	if err := c.r.store.PutAll(cache.KindCustomField, c.fields); err != nil {
		return err
	}

	return c.r.store.PutAll(cache.KindCustomFieldValue, c.values)
}
