package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
	"tutorhub/internal/domains/booking/model"
	notificationDto "tutorhub/internal/domains/notification/model/dto"
	"tutorhub/shared/cache"
	gDto "tutorhub/shared/dto"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
)

// table is an in-memory stand-in for a postgres table that understands the shared filter DSL.
type table[T any] struct {
	mu   sync.Mutex
	rows []T
	// guard runs under the lock before a row is stored.
	guard func(rows []T, candidate T, index int) error
}

func (t *table[T]) Insert(_ context.Context, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.guard != nil {
		if err := t.guard(t.rows, row, -1); err != nil {
			return err
		}
	}

	t.rows = append(t.rows, row)

	return nil
}

func (t *table[T]) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range t.rows {
		if matchGroup(reflect.ValueOf(row), filter) {
			return row, nil
		}
	}

	var zero T

	return zero, nil
}

func (t *table[T]) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res []T

	for _, row := range t.rows {
		if matchGroup(reflect.ValueOf(row), filter) {
			res = append(res, row)
		}
	}

	if params.SortBy != "" {
		slices.SortStableFunc(res, func(a, b T) int {
			cmp := compare(column(reflect.ValueOf(a), params.SortBy), column(reflect.ValueOf(b), params.SortBy))
			if params.SortDir == gDto.SortDirDesc {
				return -cmp
			}

			return cmp
		})
	}

	if params.Limit > 0 {
		offset := params.Offset()
		if offset >= len(res) {
			return []T{}, nil
		}

		res = res[offset:min(len(res), offset+params.Limit)]
	}

	return res, nil
}

func (t *table[T]) Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error) {
	count, err := t.Count(ctx, filter)

	return count > 0, err
}

func (t *table[T]) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0

	for _, row := range t.rows {
		if matchGroup(reflect.ValueOf(row), filter) {
			count++
		}
	}

	return count, nil
}

func (t *table[T]) Update(ctx context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	_, err := t.UpdateAffected(ctx, fields, filter)

	return err
}

func (t *table[T]) UpdateAffected(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var affected int64

	for i := range t.rows {
		if !matchGroup(reflect.ValueOf(t.rows[i]), filter) {
			continue
		}

		updated := t.rows[i]
		ptr := reflect.ValueOf(&updated).Elem()

		for name, value := range fields {
			assign(ptr, name, value)
		}

		if t.guard != nil {
			if err := t.guard(t.rows, updated, i); err != nil {
				return 0, err
			}
		}

		t.rows[i] = updated
		affected++
	}

	return affected, nil
}

func (t *table[T]) snapshot() []T {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.rows)
}

// exclusion mirrors the bookings gist constraint on active overlapping intervals.
func exclusion(rows []model.Booking, candidate model.Booking, index int) error {
	if !candidate.Status.Active() {
		return nil
	}

	for i, row := range rows {
		if i == index || row.ID == candidate.ID || row.TutorID != candidate.TutorID || !row.Status.Active() {
			continue
		}

		if row.StartTime.Before(candidate.EndTime) && candidate.StartTime.Before(row.EndTime) {
			return failure.Conflict("slot conflict")
		}
	}

	return nil
}

func matchGroup(row reflect.Value, group gDto.FilterGroup) bool {
	if len(group.Filters) == 0 {
		return true
	}

	or := group.Operator == gDto.FilterGroupOperatorOr

	for _, item := range group.Filters {
		var ok bool

		switch f := item.(type) {
		case gDto.Filter:
			ok = matchFilter(row, f)
		case gDto.FilterGroup:
			ok = matchGroup(row, f)
		}

		if or && ok {
			return true
		}

		if !or && !ok {
			return false
		}
	}

	return !or
}

func matchFilter(row reflect.Value, f gDto.Filter) bool {
	value := column(row, f.Field)

	switch f.Operator {
	case gDto.FilterIsNull:
		return value == nil
	case gDto.FilterIsNotNull:
		return value != nil
	}

	if value == nil {
		return false
	}

	switch f.Operator {
	case gDto.FilterOperatorEq:
		return compare(value, f.Value) == 0
	case gDto.FilterOperatorNotEq:
		return compare(value, f.Value) != 0
	case gDto.FilterOperatorLess:
		return compare(value, f.Value) < 0
	case gDto.FilterOperatorLessEq:
		return compare(value, f.Value) <= 0
	case gDto.FilterOperatorGreater:
		return compare(value, f.Value) > 0
	case gDto.FilterOperatorGreaterEq:
		return compare(value, f.Value) >= 0
	case gDto.FilterOperatorIn:
		list := reflect.ValueOf(f.Value)
		for i := range list.Len() {
			if compare(value, list.Index(i).Interface()) == 0 {
				return true
			}
		}

		return false
	case gDto.FilterOperatorAny:
		list := reflect.ValueOf(value)
		for i := range list.Len() {
			if compare(list.Index(i).Interface(), f.Value) == 0 {
				return true
			}
		}

		return false
	}

	panic("unsupported operator " + f.Operator)
}

// column returns the dereferenced value of the field tagged db:name, nil for NULL.
func column(row reflect.Value, name string) any {
	field, ok := fieldByTag(row, name)
	if !ok {
		panic("unknown column " + name)
	}

	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil
		}

		field = field.Elem()
	}

	return field.Interface()
}

func fieldByTag(row reflect.Value, name string) (reflect.Value, bool) {
	for i := range row.NumField() {
		sf := row.Type().Field(i)

		if sf.Tag.Get("db") == name {
			return row.Field(i), true
		}

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if field, ok := fieldByTag(row.Field(i), name); ok {
				return field, true
			}
		}
	}

	return reflect.Value{}, false
}

func assign(row reflect.Value, name string, value any) {
	field, ok := fieldByTag(row, name)
	if !ok {
		panic("unknown column " + name)
	}

	target := field.Type()
	if target.Kind() == reflect.Pointer {
		if value == nil {
			field.Set(reflect.Zero(target))

			return
		}

		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(reflect.ValueOf(value).Convert(target.Elem()))
		field.Set(ptr)

		return
	}

	field.Set(reflect.ValueOf(value).Convert(target))
}

func compare(a, b any) int {
	if at, ok := a.(time.Time); ok {
		bt := b.(time.Time)

		return at.Compare(bt)
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)

	switch av.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmpOrdered(av.Int(), reflect.ValueOf(b).Convert(av.Type()).Int())
	case reflect.Float32, reflect.Float64:
		return cmpOrdered(av.Float(), bv.Convert(av.Type()).Float())
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered[V int64 | float64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

// memCache is a RedisCache backed by a map of JSON blobs.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ int) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = raw

	return nil
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.ErrMiss)
	}

	return json.Unmarshal(raw, value)
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)

	return nil
}

func (c *memCache) Clear(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}

	return nil
}

func (c *memCache) Increment(_ context.Context, key string, _ int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int64
	_ = json.Unmarshal(c.data[key], &count)
	count++

	c.data[key], _ = json.Marshal(count)

	return count, nil
}

type recorder struct {
	mu            sync.Mutex
	notifications []notificationDto.NotifyRequest
	chats         []string
	events        []event.Event
	completions   []string
	ratings       []int
	err           error
}

func (r *recorder) Notify(_ context.Context, req notificationDto.NotifyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, req)

	return r.err
}

func (r *recorder) AppendMessage(_ context.Context, _, _, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chats = append(r.chats, text)

	return r.err
}

func (r *recorder) Publish(_ context.Context, ev event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)

	return r.err
}

func (r *recorder) RecordCompletion(_ context.Context, _, _, subject string, _ float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completions = append(r.completions, subject)

	return r.err
}

func (r *recorder) RecordRating(_ context.Context, _, _ string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ratings = append(r.ratings, rating)

	return r.err
}

func (r *recorder) eventTypes() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]event.Type, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.Type
	}

	return types
}

func (r *recorder) notificationsFor(userID string) []notificationDto.NotifyRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []notificationDto.NotifyRequest

	for _, n := range r.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}

	return res
}
