package valid

import (
	"context"
	"database/sql"

	"github.com/syssam/sqlproc"
)

type Person struct {
	Name  string
	Age   int32
	Score *int32
}

// PersonQueries groups the person procedures.
//
//sqlproc:queries
type PersonQueries interface {
	//sqlproc:proc find_people
	FindPeople(ctx context.Context, minAge int32) ([]Person, error)

	//sqlproc:proc count_people out=total
	CountPeople(ctx context.Context, minAge int32, total *int64) (int32, error)

	//sqlproc:query
	Search(ctx context.Context, query sqlproc.Raw, city *string) ([]Person, error)

	// Helper has no directive and is not a generation target.
	Helper() string
}

type PersonQueriesImpl struct {
	db *sql.DB
}

//sqlproc:queries impl=OrderStore name=orders
type OrderQueries interface {
	//sqlproc:proc purge_orders
	Purge(ctx context.Context) error
}
