// Package hostbridge is the host/editor boundary: a small websocket
// JSON-RPC server that carries node.changed/node.autobox/box.tbd
// notifications out and edit/error/previous-version requests in.
// Grounded on web/server.go's rpcRequest/rpcResponse/wsClient shape
// and lsp/protocol.go's message envelope conventions, both adapted
// from file-editing operations to tree-event notifications.
package hostbridge

import "github.com/google/uuid"

// NodeChanged is the node.changed payload: a byte range that was
// re-lexed and the text it now covers.
type NodeChanged struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// AutoboxChoice is one candidate in a node.autobox notification.
type AutoboxChoice struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Language string `json:"language"`
}

// NodeAutobox is the node.autobox payload: the error position and the
// ranked candidates the detector proposes there.
type NodeAutobox struct {
	At      int             `json:"at"`
	Choices []AutoboxChoice `json:"choices"`
}

// BoxTBD is the box.tbd payload: a language box the core has decided
// can be removed (its content reparses cleanly into the outer
// grammar). Action is always "remove"; the field exists so a future
// second tbd kind doesn't need a new message shape.
type BoxTBD struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Action string `json:"action"`
}

// EditResult is what a Core reports back after applying one inbound
// edit: the ranges that re-lexed, any boxes that became removable as
// a side effect, and a freshly computed autobox suggestion if the
// edit left an error node behind.
type EditResult struct {
	Changed   []NodeChanged
	Removable []BoxTBD
	Autobox   *NodeAutobox
}

// Core is the host-facing subset of the pipeline the bridge drives.
// hostbridge itself never touches a tree.Tree, a recognizer or a
// lbox.Detector directly; it only turns JSON requests into Core calls
// and Core's results into JSON notifications, so the parsing/
// detection logic stays in one place regardless of transport.
type Core interface {
	// Edit applies an edit at byte offset, removing `removed` bytes
	// and inserting `inserted`, then runs whatever relex/detect/
	// remove-check follows from it.
	Edit(offset, removed int, inserted string) EditResult

	// ReportError asks the core to (re)run detection at the error
	// node nearest byte offset, returning false if there is none.
	ReportError(offset int) (NodeAutobox, bool)

	// SetPreviousVersion passes the host's tag for the parse version
	// it last synced. The history heuristic does not read this tag: it
	// reads the tree's own previous snapshot (tree.Tree.PreviousVersion).
	SetPreviousVersion(version uuid.UUID)
}
