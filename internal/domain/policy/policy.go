// Package policy decides which caller capability may run which operation.
package policy

import "catalog-system/internal/domain/entity"

type Operation string

const (
	ProductList   Operation = "product.list"
	ProductGet    Operation = "product.get"
	ProductCreate Operation = "product.create"
	ProductUpdate Operation = "product.update"
	ProductDelete Operation = "product.delete"

	UserList   Operation = "user.list"
	UserGet    Operation = "user.get"
	UserCreate Operation = "user.create"
	UserUpdate Operation = "user.update"
	UserDelete Operation = "user.delete"
)

// required lists the minimum capability per operation. Unknown operations
// fall back to admin.
var required = map[Operation]entity.Capability{
	ProductList:   entity.CapabilityAnonymous,
	ProductGet:    entity.CapabilityAnonymous,
	ProductCreate: entity.CapabilityAdmin,
	ProductUpdate: entity.CapabilityAdmin,
	ProductDelete: entity.CapabilityAdmin,
	UserList:      entity.CapabilityAdmin,
	UserGet:       entity.CapabilityAdmin,
	UserCreate:    entity.CapabilityAdmin,
	UserUpdate:    entity.CapabilityAdmin,
	UserDelete:    entity.CapabilityAdmin,
}

// Allow reports whether a caller with capability c may perform op.
func Allow(op Operation, c entity.Capability) bool {
	need, ok := required[op]
	if !ok {
		need = entity.CapabilityAdmin
	}
	return c >= need
}
