// Package ui contains the Bubble Tea program that lists folders and hosts the
// folder panel. The Model type focuses on message orchestration, while
// dedicated helpers own input, rendering, and collaborator requests.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, store replies, backend updates).
//   - Key handling (input.go) splits into the picker, the panel, and the
//     modal dialogs. Panel keys turn into session transitions.
//
// State ownership:
//   - The picker rows live in internal/ui/state.List, which tracks filtering,
//     the cursor, and the viewport.
//   - The open panel is an editor wrapping a session.Session. The session
//     decides; the editor is the session.Surface that its Effects are replayed
//     onto.
//   - The folder list is kept in internal/state and updated by the dispatcher.
//
// Backend interactions:
//   - Store calls run as tea.Cmd values through the internal/ui/command bus.
//     Replies carry the session they were issued for, so a reply that lands
//     after its panel closed is dropped.
//   - A backend.Watcher streams folder changes; applyBackendEvent refreshes the
//     list and hands updates for the open folder to the session, which defers
//     them while a save is outstanding.
package ui
