package pfcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/pf/lib/log"
	"oss.terrastruct.com/pf/lib/xmain"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pflib"
)

type watcherOpts struct {
	inputPath  string
	outputPath string
	overrides  overrides
	timeout    time.Duration
}

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms *xmain.State
	watcherOpts

	designCh chan struct{}

	fw *fsnotify.Watcher

	closeOnce sync.Once

	errMu sync.Mutex
	err   error

	// pendingImage is an image the design points at that does not exist yet.
	// watchLoop redesigns once it appears.
	pendingMu    sync.Mutex
	pendingImage string

	// Owned by designLoop.
	pipeline     *pflib.Pipeline
	imagePath    string
	imageModTime time.Time
	imageLoaded  bool
}

func newWatcher(ctx context.Context, ms *xmain.State, opts watcherOpts) (*watcher, error) {
	ctx, cancel := context.WithCancel(ctx)

	w := &watcher{
		ctx:    ctx,
		cancel: cancel,

		ms:          ms,
		watcherOpts: opts,

		designCh: make(chan struct{}, 1),
		pipeline: pflib.NewPipeline(),
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, err
	}
	w.fw = fw
	return w, nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.designLoop)

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.closeOnce.Do(func() {
		w.cancel()
		err := w.fw.Close()
		w.setErr(err)
	})
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil && !errors.Is(err, context.Canceled) {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		err := fn(w.ctx)
		w.setErr(err)
	}()
}

// watchLoop waits for a burst of file system events to settle before asking
// for a redesign. Editors commonly emit several events for one save, and a
// large image may be written in many chunks.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified := make(map[string]time.Time)

	mt, err := w.ensureAddWatch(ctx, w.inputPath)
	if err != nil {
		return err
	}
	lastModified[w.inputPath] = mt
	w.ms.Log.Info.Printf("designing %v...", w.ms.HumanPath(w.inputPath))
	w.requestDesign()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	changed := make(map[string]struct{})

	for {
		select {
		case <-pollTicker.C:
			// Events are not guaranteed to arrive, e.g. when a file is
			// replaced and the watch silently dropped.
			missedChanges := false
			if p := w.getPendingImage(); p != "" {
				if _, err := os.Stat(p); err == nil {
					w.setPendingImage("")
					missedChanges = true
				}
			}
			for _, watched := range w.fw.WatchList() {
				mt, err := w.ensureAddWatch(ctx, watched)
				if err != nil {
					return err
				}
				if mt2, ok := lastModified[watched]; !ok || !mt.Equal(mt2) {
					missedChanges = true
					lastModified[watched] = mt
				}
			}
			if missedChanges {
				w.requestDesign()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			if ev.Name != w.inputPath && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if _, err := os.Stat(ev.Name); err != nil {
					// The image is gone. The redesign reports it and marks it
					// pending so polling picks it up once it is back.
					delete(lastModified, ev.Name)
					changed[ev.Name] = struct{}{}
					eatBurstTimer.Reset(time.Millisecond * 16)
					continue
				}
			}
			mt, err := w.ensureAddWatch(ctx, ev.Name)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified[ev.Name]) {
					// Benign Chmod.
					// See https://github.com/fsnotify/fsnotify/issues/15
					continue
				}
			}
			lastModified[ev.Name] = mt
			changed[ev.Name] = struct{}{}
			eatBurstTimer.Reset(time.Millisecond * 16)
		case <-eatBurstTimer.C:
			if len(changed) == 0 {
				continue
			}
			var changedList []string
			for k := range changed {
				changedList = append(changedList, k)
				delete(changed, k)
			}
			sort.Strings(changedList)
			changedStr := w.ms.HumanPath(changedList[0])
			for i := 1; i < len(changedList); i++ {
				changedStr += fmt.Sprintf(", %s", w.ms.HumanPath(changedList[i]))
			}
			w.ms.Log.Info.Printf("detected change in %s: redesigning...", changedStr)
			w.requestDesign()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestDesign() {
	select {
	case w.designCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch retries until path can be watched, backing off up to 16s.
// Editors that save by renaming leave a short window where path is missing.
func (w *watcher) ensureAddWatch(ctx context.Context, path string) (time.Time, error) {
	interval := time.Millisecond * 16
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch(path)
		if err == nil {
			return mt, nil
		}
		if interval >= time.Second {
			w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.ms.HumanPath(path), err, interval)
		}

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second {
				interval = time.Second
			}
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch(path string) (time.Time, error) {
	err := w.fw.Add(path)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

// watchImage moves the image watch to path when the design starts pointing at
// a different image. The watch is only moved once path is being watched.
func (w *watcher) watchImage(ctx context.Context, path string) error {
	if path == w.imagePath {
		return nil
	}
	if path != "" {
		_, err := w.ensureAddWatch(ctx, path)
		if err != nil {
			return err
		}
	}
	w.unwatchImage()
	w.imagePath = path
	return nil
}

func (w *watcher) unwatchImage() {
	if w.imagePath != "" && w.imagePath != w.inputPath {
		// Don't mind errors here
		w.fw.Remove(w.imagePath)
	}
	w.imagePath = ""
	w.imageModTime = time.Time{}
}

func (w *watcher) getPendingImage() string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	return w.pendingImage
}

func (w *watcher) setPendingImage(path string) {
	w.pendingMu.Lock()
	w.pendingImage = path
	w.pendingMu.Unlock()
}

func (w *watcher) designLoop(ctx context.Context) error {
	firstDesign := true
	for {
		select {
		case <-w.designCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		prefix := ""
		if !firstDesign {
			prefix = "re"
		}
		firstDesign = false

		start := time.Now()
		res, err := w.design(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.ms.Log.Error.Printf("failed to %sdesign: %v", prefix, err)
			continue
		}
		err = writeResult(w.ms, w.outputPath, res)
		if err != nil {
			w.ms.Log.Error.Printf("failed to write %s: %v", w.ms.HumanPath(w.outputPath), err)
			continue
		}
		report(w.ms, res)
		w.ms.Log.Success.Printf("successfully %sdesigned %s to %s in %s", prefix, w.ms.HumanPath(w.inputPath), w.ms.HumanPath(w.outputPath), time.Since(start))
	}
}

// design reruns the pipeline. The image is only decoded again when the design
// points at a different file or the file was modified.
func (w *watcher) design(ctx context.Context) (*pflib.Result, error) {
	ctx, cancel := log.WithTimeout(ctx, w.timeout)
	defer cancel()

	cfg, err := loadConfig(w.ms, w.inputPath, w.overrides)
	if err != nil {
		return nil, err
	}

	fp := cfg.ImagePath()
	if fp != "" {
		_, err := os.Stat(fp)
		if err != nil {
			w.unwatchImage()
			w.setPendingImage(fp)
			return nil, err
		}
	}
	w.setPendingImage("")
	err = w.watchImage(ctx, fp)
	if err != nil {
		return nil, err
	}
	if fp == "" {
		if w.imageLoaded {
			w.pipeline.SetImage(nil)
			w.imageLoaded = false
		}
	} else {
		d, err := os.Stat(fp)
		if err != nil {
			return nil, err
		}
		if !d.ModTime().Equal(w.imageModTime) {
			img, err := pfimage.Load(fp)
			if err != nil {
				return nil, err
			}
			w.pipeline.SetImage(img)
			w.imageLoaded = true
			w.imageModTime = d.ModTime()
		}
	}

	res, err := w.pipeline.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, fmt.Sprintf("recomputed stages %v", res.Recomputed))
	return res, nil
}
