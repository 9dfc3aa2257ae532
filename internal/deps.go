package internal

import (
	"weatherapp/internal/jobs"
	"weatherapp/internal/service"
	"weatherapp/internal/session"
)

type Deps struct {
	Auth     *service.AuthService
	Sessions *session.Manager
	Jobs     jobs.Queue
}
