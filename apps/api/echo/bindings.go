package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tmwangi/elimu/core"
)

var orderingParam = "ordering"

// listings come back newest first when the caller does not order them
var defaultOrdering = core.DBOrdering{Field: "created_at", Ascending: false}

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	for _, field := range strings.Split(ctx.QueryParam(orderingParam), ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	if len(ord.Orderings) == 0 {
		ord.Orderings = append(ord.Orderings, defaultOrdering)
	}
}
