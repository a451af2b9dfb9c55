package ecs

import "unsafe"

// iface mirrors the runtime layout of an interface value: a type word and a data word.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}
