// Package port provides node id allocation and port derivation.
//
// # Id Allocation
//
// Node ids are allocated first-fit from [1, 99]: the lowest id not held by
// an existing record is chosen, so ids freed by deletion are reused before
// the range is extended.
//
//	id, err := port.Allocate(existingIDs)
//
// # Port Templates
//
// A port template is one to three digits followed by the placeholder "xx",
// which is replaced by the two-digit node id:
//
//	port.Resolve(5, "17xx") // "1705"
//	port.Resolve(5, "1705") // InvalidTemplate
//
// Since ids never exceed 99, two nodes never resolve to the same port from
// the same template.
package port
