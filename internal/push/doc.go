// Package push carries the server-push side of the node-identity contract.
//
// The backend addresses nodes in pushed events by their fully-qualified path
// (see package nodeid). The Router correlates those ids with the local nodes
// it watches using the resolver, so a node nested in a subgraph only reacts
// to events meant for it and not to events for a namesake in another graph.
// Listen feeds the Router from a socket.io connection; SocketEmitter and
// Recorder are the sending side.
package push
