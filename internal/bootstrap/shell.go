package bootstrap

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// shell is the part of the Wails runtime the App drives.
type shell interface {
	OpenFile(ctx context.Context, opts wailsruntime.OpenDialogOptions) (string, error)
	SaveFile(ctx context.Context, opts wailsruntime.SaveDialogOptions) (string, error)
	Message(ctx context.Context, opts wailsruntime.MessageDialogOptions)
	Emit(ctx context.Context, name string, data any)
	OnFileDrop(ctx context.Context, callback func(x, y int, paths []string))
}

type wailsShell struct{}

func (wailsShell) OpenFile(ctx context.Context, opts wailsruntime.OpenDialogOptions) (string, error) {
	return wailsruntime.OpenFileDialog(ctx, opts)
}

func (wailsShell) SaveFile(ctx context.Context, opts wailsruntime.SaveDialogOptions) (string, error) {
	return wailsruntime.SaveFileDialog(ctx, opts)
}

func (wailsShell) Message(ctx context.Context, opts wailsruntime.MessageDialogOptions) {
	_, _ = wailsruntime.MessageDialog(ctx, opts)
}

func (wailsShell) Emit(ctx context.Context, name string, data any) {
	wailsruntime.EventsEmit(ctx, name, data)
}

func (wailsShell) OnFileDrop(ctx context.Context, callback func(x, y int, paths []string)) {
	wailsruntime.OnFileDrop(ctx, callback)
}
