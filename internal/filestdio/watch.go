package filestdio

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"tailpipe/internal/logging"
)

// startWatch subscribes to the parent directory so writes to the channel file
// wake the poll loop before the next tick. Any failure leaves the reader on
// plain polling.
func (r *TailReader) startWatch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Warn("file watch unavailable; using polling only", logging.Error(err))
		return
	}
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		_ = watcher.Close()
		r.logger.Warn("file watch unavailable; using polling only", logging.Error(err))
		return
	}
	r.watcher = watcher
	r.watchDone = make(chan struct{})
	go r.watchLoop()
}

func (r *TailReader) watchLoop() {
	defer close(r.watchDone)
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				r.nudge()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Debug("file watch error", logging.Error(err))
		}
	}
}

// nudge never blocks; one pending wake-up is enough for the loop to drain.
func (r *TailReader) nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *TailReader) stopWatch() {
	if r.watcher == nil {
		return
	}
	if err := r.watcher.Close(); err != nil {
		r.logger.Debug("close file watch failed", logging.Error(err))
	}
	<-r.watchDone
}
