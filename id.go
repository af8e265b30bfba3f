package haulage

import "github.com/xraph/haulage/id"

// ID is the identifier type shared by every haulage entity.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
