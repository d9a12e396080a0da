package port

import "context"

type Authorizer interface {
	IsAdministrator(ctx context.Context, userID int64) bool
}
