// Package cli provides the interactive GophChat terminal client.
//
// It wires configuration, the local metadata store, the REST client and
// the AI bridge into a REPL. Typical flow: log in with a bearer token,
// list chats, start or open one and talk to the model. Answers are
// revealed at a steady pace while they stream and are rendered as
// markdown by "show".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
