package plugin

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/scribeview/desktop/internal/shell"
)

// Dialog shows native open/save dialogs on the shell's window.
type Dialog struct {
	win fyne.Window
}

var _ Plugin = (*Dialog)(nil)

// NewDialog creates the plugin for the given window.
func NewDialog(win fyne.Window) *Dialog {
	return &Dialog{win: win}
}

// Name implements Plugin.
func (d *Dialog) Name() string { return "dialog" }

// Register implements Plugin. Fails without a native window, which keeps
// the plugin out of headless runs.
func (d *Dialog) Register(host shell.Host) error {
	if d.win == nil {
		return errors.New("no native window")
	}
	return nil
}

// OpenFile shows an open dialog and reports the chosen path. A cancelled
// dialog reports an empty path and nil error.
func (d *Dialog) OpenFile(cb func(path string, err error)) {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			cb("", err)
			return
		}
		defer rc.Close()
		cb(rc.URI().Path(), nil)
	}, d.win)
}

// SaveFile shows a save dialog with a suggested file name and reports the
// chosen path. A cancelled dialog reports an empty path and nil error.
func (d *Dialog) SaveFile(suggested string, cb func(path string, err error)) {
	save := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			cb("", err)
			return
		}
		defer wc.Close()
		cb(wc.URI().Path(), nil)
	}, d.win)
	save.SetFileName(suggested)
	save.Show()
}

// ShowError presents an error to the user.
func (d *Dialog) ShowError(err error) {
	dialog.ShowError(err, d.win)
}

// ShowInfo presents an informational message.
func (d *Dialog) ShowInfo(title, message string) {
	dialog.ShowInformation(title, message, d.win)
}
