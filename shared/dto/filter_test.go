package dto_test

import (
	"testing"
	"tutorhub/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.Filter
		where  string
		args   map[string]any
	}{
		{
			name:   "eq with table",
			filter: dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq, Table: "bookings"},
			where:  "bookings.status = :status",
			args:   map[string]any{"status": "pending"},
		},
		{
			name:   "arg name overrides field",
			filter: dto.Filter{ArgName: "new_end", Field: "start_time", Value: 1, Operator: dto.FilterOperatorLess},
			where:  "start_time < :new_end",
			args:   map[string]any{"new_end": 1},
		},
		{
			name:   "in expands slices",
			filter: dto.Filter{Field: "id", Value: []string{"a", "b"}, Operator: dto.FilterOperatorIn, Table: "users"},
			where:  "users.id IN (:id_0, :id_1)",
			args:   map[string]any{"id_0": "a", "id_1": "b"},
		},
		{
			name:   "in with empty slice matches nothing",
			filter: dto.Filter{Field: "id", Value: []string{}, Operator: dto.FilterOperatorIn},
			where:  "FALSE",
			args:   map[string]any{},
		},
		{
			name:   "in with a scalar",
			filter: dto.Filter{Field: "id", Value: "a", Operator: dto.FilterOperatorIn},
			where:  "id IN (:id)",
			args:   map[string]any{"id": "a"},
		},
		{
			name:   "not equal",
			filter: dto.Filter{Field: "status", Value: "cancelled", Operator: dto.FilterOperatorNotEq},
			where:  "status <> :status",
			args:   map[string]any{"status": "cancelled"},
		},
		{
			name:   "any",
			filter: dto.Filter{Field: "subjects", Value: "Math", Operator: dto.FilterOperatorAny},
			where:  ":subjects = ANY(subjects)",
			args:   map[string]any{"subjects": "Math"},
		},
		{
			name:   "greater or equal",
			filter: dto.Filter{Field: "end_time", Value: 5, Operator: dto.FilterOperatorGreaterEq},
			where:  "end_time >= :end_time",
			args:   map[string]any{"end_time": 5},
		},
		{
			name:   "is null",
			filter: dto.Filter{Field: "tc_status", Operator: dto.FilterIsNull, Table: "bookings"},
			where:  "bookings.tc_status IS NULL",
			args:   map[string]any{},
		},
		{
			name:   "unknown operator",
			filter: dto.Filter{Field: "x", Operator: "between"},
			where:  "",
			args:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "tutor_id", Value: "t", Operator: dto.FilterOperatorEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{ArgName: "s1", Field: "status", Value: "pending", Operator: dto.FilterOperatorEq},
					dto.Filter{ArgName: "s2", Field: "status", Value: "confirmed", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(tutor_id = :tutor_id AND (status = :s1 OR status = :s2))", where)
	assert.Equal(t, map[string]any{"tutor_id": "t", "s1": "pending", "s2": "confirmed"}, args)
}

func TestFilterGroup_SkipsEmptyClauses(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "x", Operator: "between"},
			dto.Filter{Field: "id", Value: "b-1", Operator: dto.FilterOperatorEq},
			"not a filter",
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(id = :id)", where)
	assert.Equal(t, map[string]any{"id": "b-1"}, args)
}

func TestFilterGroup_Empty(t *testing.T) {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	where, args := group.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}
