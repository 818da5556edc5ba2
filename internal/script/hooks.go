package script

import (
	"context"
	"os"
	"path/filepath"

	"github.com/coreman2200/funtimes-ftmixer/internal/controls"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/session"
)

// SessionHooks binds a player to a session. Relative upload paths resolve
// against dir.
func SessionHooks(ctx context.Context, s *session.Session, dir string) Hooks {
	return Hooks{
		Upload: func(slot int, path string) error {
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = s.Upload(ctx, slot, filepath.Base(path), f)
			return err
		},
		PointerDown: s.PointerDown,
		PointerMove: s.PointerMove,
		PointerUp:   s.PointerUp,
		BCDown:      s.BCDown,
		SetControl: func(id string, value any) error {
			return s.SetControl(controls.ID(id), value)
		},
		SwitchPort: func(port int) error { return s.SwitchPort(ports.PortID(port)) },
		RefreshMix: s.RefreshMix,
	}
}
