package sqlxrepos

import (
	"testing"

	"github.com/tmwangi/elimu/core"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "no ordering"},
		{
			name:     "known columns",
			ordering: []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "created_at"}},
			want:     " ORDER BY name ASC, created_at DESC",
		},
		{
			name:     "unlisted column dropped",
			ordering: []core.DBOrdering{{Field: "password_hash"}, {Field: "username", Ascending: true}},
			want:     " ORDER BY username ASC",
		},
		{
			name:     "hostile field dropped",
			ordering: []core.DBOrdering{{Field: `(SELECT password_hash FROM "user" LIMIT 1)`}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderBy(tt.ordering, userColumns); got != tt.want {
				t.Errorf("orderBy() = %q; want %q", got, tt.want)
			}
		})
	}
}
