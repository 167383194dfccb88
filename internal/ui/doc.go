// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders the state held by a [reconciler.Reconciler] across six views:
//  1. home : session summary and navigation
//  2. search : results of the last keyword search
//  3. popular : the popular listing
//  4. favorites : the signed-in user's favorites
//  5. mypage : account details
//  6. recommendations : personal or similarity recommendations
//
// The [Model] never mutates collections itself. Every intent (search, favorite, recommend, login)
// runs as a [tea.Cmd] calling the reconciler, and the model re-reads [reconciler.Reconciler.Snapshot]
// when the command finishes or when a reconciler event arrives on the observer channel.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
