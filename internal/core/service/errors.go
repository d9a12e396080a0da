package service

import "errors"

var (
	ErrSessionBusy   = errors.New("session busy")
	ErrManagerClosed = errors.New("session manager closed")
)
