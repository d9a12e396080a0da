// Package auth decides who may use the admin flow.
package auth

import "context"

// StaticAuthorizer grants admin rights to a fixed set of user ids taken from
// configuration.
type StaticAuthorizer struct {
	admins map[int64]struct{}
}

func NewStaticAuthorizer(ids []int64) *StaticAuthorizer {
	admins := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return &StaticAuthorizer{admins: admins}
}

func (a *StaticAuthorizer) IsAdministrator(_ context.Context, userID int64) bool {
	_, ok := a.admins[userID]
	return ok
}
