// Package layout defines the boundary between the scene graph and a
// flexbox layout engine.
//
// The scene graph builds one layout tree per container, sets a Style on
// each Node, and asks the engine to Calculate the tree when it is dirty.
// Nodes carry a Handle back to their owner instead of a pointer, so a
// stale callback can never reach freed memory.
//
// The in-process implementation lives in the flex subpackage.
package layout
