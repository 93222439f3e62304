package clog

import (
	"context"
	"maps"
	"sync"
)

const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
	TaskAttributeKey  = "task_id"
	StaffAttributeKey = "staff_id"
)

// bag collects attributes while a request travels through handlers and the
// engine. Nested maps are merged key by key.
type bag struct {
	mu    sync.RWMutex
	attrs map[string]any
}

func (b *bag) merge(src map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mergeMaps(b.attrs, src)
}

func (b *bag) get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.attrs[key]
	return v, ok
}

func (b *bag) snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.attrs)
}

type bagKey struct{}

// ContextWithSlog attaches an empty attribute bag to ctx. Every record logged
// through AttributesHandler with that ctx carries the collected attributes.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, bagKey{}, &bag{attrs: map[string]any{}})
}

func bagFrom(ctx context.Context) *bag {
	b, _ := ctx.Value(bagKey{}).(*bag)
	return b
}

// AddAttribute is a no-op on a ctx without a bag.
func AddAttribute(ctx context.Context, key string, value any) {
	AddAttributes(ctx, map[string]any{key: value})
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	if b := bagFrom(ctx); b != nil {
		b.merge(attributes)
	}
}

// GetAttribute returns the zero T when key is missing or holds another type.
func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	b := bagFrom(ctx)
	if b == nil {
		return zero
	}
	v, ok := b.get(key)
	if !ok {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	return zero
}

func GetAttributes(ctx context.Context) map[string]any {
	if b := bagFrom(ctx); b != nil {
		return b.snapshot()
	}
	return nil
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		vMap, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if dstMap, ok := dst[k].(map[string]any); ok {
			mergeMaps(dstMap, vMap)
			continue
		}
		dst[k] = maps.Clone(vMap)
	}
}

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

func GetStack(ctx context.Context) string {
	return GetAttribute[string](ctx, StackAttributeKey)
}

// AddTask records the task (and optionally the staff member) a request acts on.
func AddTask(ctx context.Context, taskID, staffID string) {
	attrs := map[string]any{TaskAttributeKey: taskID}
	if staffID != "" {
		attrs[StaffAttributeKey] = staffID
	}
	AddAttributes(ctx, attrs)
}

func AddStaff(ctx context.Context, staffID string) {
	AddAttribute(ctx, StaffAttributeKey, staffID)
}
