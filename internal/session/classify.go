package session

import (
	"errors"

	"github.com/atomicstack/folderctl/internal/folder"
)

// Classify maps a failed save to the notice shown to the user.
func Classify(err error) Notice {
	switch {
	case err == nil:
		return NoticeNone
	case errors.Is(err, folder.ErrTitleRequired):
		return NoticeTitleRequired
	case errors.Is(err, folder.ErrTooManyFilters):
		return NoticeLimitReached
	default:
		return NoticeSaveFailed
	}
}

// NoticeText returns the message for a notice.
func NoticeText(n Notice, err error) string {
	switch n {
	case NoticeTitleRequired:
		return "Folder name required"
	case NoticeLimitReached:
		return "Folder limit reached. Remove a folder or some chats to continue."
	case NoticeSaveFailed:
		if err != nil {
			return "Save failed: " + err.Error()
		}
		return "Save failed"
	case NoticeDeleteFailed:
		if err != nil {
			return "Delete failed: " + err.Error()
		}
		return "Delete failed"
	default:
		if err != nil {
			return err.Error()
		}
		return ""
	}
}
