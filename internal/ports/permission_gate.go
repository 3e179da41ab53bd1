package ports

import "context"

type PermissionGate interface {
	Request(ctx context.Context) (bool, error)
}
