package sqlxrepos

import (
	"strings"

	"github.com/tmwangi/elimu/core"
)

// Orderable columns per table. Ordering fields come straight from the query
// string; anything outside these sets is dropped instead of spliced into the
// statement.
var (
	userColumns    = columnSet("id", "name", "username", "email", "is_active", "created_at", "updated_at", "last_login")
	courseColumns  = columnSet("id", "name", "price", "max_participants", "teacher_id", "created_at", "updated_at")
	contentColumns = columnSet("id", "course_id", "title", "release_time", "created_at", "updated_at")
	commentColumns = columnSet("id", "content_id", "member_id", "comment", "is_approved", "created_at")
)

func columnSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// orderBy renders an ORDER BY clause from the orderings whose field is a known
// column of the table; it returns "" when none survive.
func orderBy(ordering []core.DBOrdering, columns map[string]struct{}) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if _, ok := columns[ord.Field]; !ok {
			continue
		}
		terms = append(terms, ord.String())
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}
