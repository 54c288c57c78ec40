package baddirection

import "context"

//sqlproc:queries
type Queries interface {
	//sqlproc:proc count_things out=total
	Count(ctx context.Context, total int64) error
}
