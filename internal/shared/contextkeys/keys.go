package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "tutorhub context key " + string(c)
}

// RequestIDKey is the key for the per-request identifier in context.Context
const RequestIDKey = contextKey("requestID")

// ActorIDKey is the key for the authenticated actor (staff member or registrant) in context.Context
const ActorIDKey = contextKey("actorID")

// CollectionKey is the key for the logical collection name in context.Context
const CollectionKey = contextKey("collection")

// OperationKey is the key for the current data-layer operation in context.Context
const OperationKey = contextKey("operation")
