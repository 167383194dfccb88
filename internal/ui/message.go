package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/reconciler"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgOpDone MsgKind = iota
	MsgEvent
	MsgDetailFetched
	MsgEventsClosed
)

type opResult struct {
	op  string
	err error
}

type detailResult struct {
	detail *models.AnimeDetail
	err    error
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(op string, err error) Msg {
	return Msg{kind: MsgOpDone, data: opResult{op: op, err: err}}
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(e reconciler.Event) Msg {
	return Msg{kind: MsgEvent, data: e}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *models.AnimeDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailResult{detail: detail, err: err}}
}
