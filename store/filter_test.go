package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		rec     Record
		want    bool
		wantErr bool
	}{
		{
			name: "literal equality",
			raw:  map[string]any{"status": true},
			rec:  Record{"id": "1", "status": true},
			want: true,
		},
		{
			name: "literal mismatch",
			raw:  map[string]any{"status": true},
			rec:  Record{"id": "1", "status": false},
			want: false,
		},
		{
			name: "numeric equality across int and float",
			raw:  map[string]any{"organization_id": float64(100048)},
			rec:  Record{"id": "1", "organization_id": 100048},
			want: true,
		},
		{
			name: "array membership",
			raw:  map[string]any{"type": []any{"display", "video"}},
			rec:  Record{"id": "1", "type": "video"},
			want: true,
		},
		{
			name: "array membership miss",
			raw:  map[string]any{"type": []any{"display", "video"}},
			rec:  Record{"id": "1", "type": "audio"},
			want: false,
		},
		{
			name: "gte inclusive",
			raw:  map[string]any{"budget": map[string]any{"$gte": float64(1000)}},
			rec:  Record{"id": "1", "budget": float64(1000)},
			want: true,
		},
		{
			name: "lte inclusive",
			raw:  map[string]any{"budget": map[string]any{"$lte": float64(1000)}},
			rec:  Record{"id": "1", "budget": float64(1000)},
			want: true,
		},
		{
			name: "gte and lte combined",
			raw: map[string]any{"budget": map[string]any{
				"$gte": float64(100),
				"$lte": float64(500),
			}},
			rec:  Record{"id": "1", "budget": float64(750)},
			want: false,
		},
		{
			name: "ne",
			raw:  map[string]any{"status": map[string]any{"$ne": "paused"}},
			rec:  Record{"id": "1", "status": "active"},
			want: true,
		},
		{
			name: "contains is case-insensitive",
			raw:  map[string]any{"name": map[string]any{"$contains": "acme"}},
			rec:  Record{"id": "1", "name": "ACME Corp"},
			want: true,
		},
		{
			name: "contains on non-string never matches",
			raw:  map[string]any{"budget": map[string]any{"$contains": "10"}},
			rec:  Record{"id": "1", "budget": float64(1000)},
			want: false,
		},
		{
			name: "like glob pattern",
			raw:  map[string]any{"name": map[string]any{"$like": "q? * campaign"}},
			rec:  Record{"id": "1", "name": "Q3 Holiday Campaign"},
			want: true,
		},
		{
			name: "unknown field matches nothing",
			raw:  map[string]any{"nonexistent": "x"},
			rec:  Record{"id": "1", "name": "whatever"},
			want: false,
		},
		{
			name: "empty filter matches everything",
			raw:  map[string]any{},
			rec:  Record{"id": "1"},
			want: true,
		},
		{
			name:    "unknown operator fails",
			raw:     map[string]any{"budget": map[string]any{"$between": []any{1, 2}}},
			wantErr: true,
		},
		{
			name:    "contains with non-string operand fails",
			raw:     map[string]any{"name": map[string]any{"$contains": float64(3)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Match(tt.rec))
		})
	}
}

func TestFilterAndSemantics(t *testing.T) {
	f, err := ParseFilter(map[string]any{
		"status":        true,
		"advertiser_id": float64(5001),
	})
	require.NoError(t, err)

	assert.True(t, f.Match(Record{"id": "1", "status": true, "advertiser_id": float64(5001)}))
	assert.False(t, f.Match(Record{"id": "2", "status": true, "advertiser_id": float64(5002)}))
	assert.False(t, f.Match(Record{"id": "3", "status": false, "advertiser_id": float64(5001)}))
}

func TestNilFilterMatchesAll(t *testing.T) {
	var f Filter
	assert.True(t, f.Match(Record{"id": "1"}))
}
