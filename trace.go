package ecs

import "github.com/TheBitDrifter/bark"

// tracedErr wraps an error with a stack trace, matching the teacher's own
// `panic(bark.AddTrace(err))` pattern in entity.go/query.go. It is used both
// for programmer errors that are panicked (unknown component, out-of-bounds
// row, unsupported field type) and for errors returned to the caller (stale
// entity, scheduler build errors such as UnschedulableSetError, scheduler
// shutdown).
func tracedErr(err error) error {
	return bark.AddTrace(err)
}
