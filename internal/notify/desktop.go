package notify

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
)

// DesktopSink raises native desktop notifications.
type DesktopSink struct {
	// AppName labels the notification in desktop environments that show a
	// sender.
	AppName string
}

// Notify implements Sink. The display duration is controlled by the desktop
// environment, so timeout is ignored here.
func (d DesktopSink) Notify(title, message string, _ time.Duration) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
