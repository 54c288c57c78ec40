package badquery

import "context"

//sqlproc:queries
type Queries interface {
	//sqlproc:query
	Run(ctx context.Context, limit int32) error
}
