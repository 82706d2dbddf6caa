package picker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"golang.org/x/image/draw"
)

// thumbnailJob is one queued request plus its delivery callback. Callbacks
// run on a worker goroutine; UI consumers marshal with fyne.Do themselves.
type thumbnailJob struct {
	req      ThumbnailRequest
	callback func(image.Image)
}

// Thumbnailer turns thumbnail requests into square, center-cropped images.
// Requests queue LIFO so the cells currently on screen resolve first, with a
// bounded queue that sheds the oldest work. Decoded results are cached in
// memory per (asset, size bucket) and persisted as JPEGs with LRU cleanup.
type Thumbnailer struct {
	cache      sync.Map // map[string]image.Image
	jobs       []thumbnailJob
	jobLock    sync.Mutex
	jobCond    *sync.Cond
	ffmpegPath string
	cacheDir   string
}

var (
	// MaxCacheSize and MaxCacheFiles bound the on-disk thumbnail cache.
	MaxCacheSize  int64 = 500 * 1024 * 1024
	MaxCacheFiles int   = 10000
)

const thumbnailQueueCap = 100

var (
	thumbInstance *Thumbnailer
	thumbOnce     sync.Once
)

// GetThumbnailer returns the process-wide thumbnailer, starting its workers
// on first use.
func GetThumbnailer() *Thumbnailer {
	thumbOnce.Do(func() {
		ffmpeg := "ffmpeg"
		if pref := fyne.CurrentApp().Preferences().String(ffmpegPathKey); pref != "" {
			ffmpeg = pref
		}
		thumbInstance = &Thumbnailer{
			jobs:       make([]thumbnailJob, 0, thumbnailQueueCap),
			ffmpegPath: ffmpeg,
		}
		thumbInstance.jobCond = sync.NewCond(&thumbInstance.jobLock)

		if userCache, err := os.UserCacheDir(); err == nil {
			thumbInstance.cacheDir = filepath.Join(userCache, "xmediapicker")
			_ = os.MkdirAll(thumbInstance.cacheDir, 0755)
			go thumbInstance.cleanupCache()
		}

		for range 4 {
			go thumbInstance.worker()
		}
	})
	return thumbInstance
}

// SetFFmpegPath changes the ffmpeg binary used for video frame grabs and
// persists the choice.
func (t *Thumbnailer) SetFFmpegPath(path string) {
	t.ffmpegPath = path
	fyne.CurrentApp().Preferences().SetString(ffmpegPathKey, path)
}

// sizeBucket quantises a size hint so minor cell-side changes reuse the same
// cached render.
func sizeBucket(hint float32) int {
	switch {
	case hint <= 0:
		return 256
	case hint <= 128:
		return 128
	case hint <= 256:
		return 256
	default:
		return 512
	}
}

func thumbCacheID(path string, bucket int) string {
	return fmt.Sprintf("%s@%d", path, bucket)
}

// LoadMemoryOnly returns the cached thumbnail for a request, or nil when it
// is not in memory yet.
func (t *Thumbnailer) LoadMemoryOnly(req ThumbnailRequest) image.Image {
	if req.Asset.Zero() || req.Asset.URI().Scheme() != "file" {
		return nil
	}
	if cached, ok := t.cache.Load(thumbCacheID(req.Asset.URI().Path(), sizeBucket(req.SizeHint))); ok {
		return cached.(image.Image)
	}
	return nil
}

// Load resolves a thumbnail request. Cache hits call back immediately on the
// caller's goroutine; misses queue for the workers.
func (t *Thumbnailer) Load(req ThumbnailRequest, callback func(image.Image)) {
	if req.Asset.Zero() || req.Asset.URI().Scheme() != "file" {
		return
	}

	path := req.Asset.URI().Path()
	ext := strings.ToLower(filepath.Ext(path))
	if !isSupportedImage(ext) && !isSupportedVideo(ext) {
		return
	}

	id := thumbCacheID(path, sizeBucket(req.SizeHint))
	if cached, ok := t.cache.Load(id); ok {
		callback(cached.(image.Image))
		return
	}

	if img := t.loadFromDisk(path, sizeBucket(req.SizeHint)); img != nil {
		t.cache.Store(id, img)
		callback(img)
		return
	}

	t.jobLock.Lock()
	if len(t.jobs) >= thumbnailQueueCap {
		// Shed the oldest request; it belongs to a cell that likely
		// scrolled away.
		t.jobs = t.jobs[1:]
	}
	t.jobs = append(t.jobs, thumbnailJob{req: req, callback: callback})
	t.jobCond.Signal()
	t.jobLock.Unlock()
}

// Prewarm pulls disk-cached thumbnails for a whole collection into memory in
// the background, trickled to avoid an I/O spike on album open.
func (t *Thumbnailer) Prewarm(contents CollectionContents, sizeHint float32) {
	if t.cacheDir == "" || contents == nil {
		return
	}

	count := contents.Count()
	assets := make([]Asset, 0, count)
	for i := 0; i < count; i++ {
		assets = append(assets, contents.Item(i))
	}
	bucket := sizeBucket(sizeHint)

	go func() {
		for _, a := range assets {
			if a.Zero() || a.URI().Scheme() != "file" {
				continue
			}
			path := a.URI().Path()
			id := thumbCacheID(path, bucket)
			if _, ok := t.cache.Load(id); ok {
				continue
			}
			if img := t.loadFromDisk(path, bucket); img != nil {
				t.cache.Store(id, img)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func (t *Thumbnailer) loadFromDisk(path string, bucket int) image.Image {
	if t.cacheDir == "" {
		return nil
	}
	key, err := t.cacheKey(path, bucket)
	if err != nil {
		return nil
	}
	cachePath := filepath.Join(t.cacheDir, key+".jpg")
	if _, err := os.Stat(cachePath); err != nil {
		return nil
	}
	img, err := decodeImageFile(cachePath)
	if err != nil {
		return nil
	}
	return img
}

func (t *Thumbnailer) worker() {
	for {
		t.jobLock.Lock()
		for len(t.jobs) == 0 {
			t.jobCond.Wait()
		}
		// LIFO: newest request is for whatever is on screen right now.
		last := len(t.jobs) - 1
		job := t.jobs[last]
		t.jobs = t.jobs[:last]
		t.jobLock.Unlock()

		path := job.req.Asset.URI().Path()
		bucket := sizeBucket(job.req.SizeHint)
		id := thumbCacheID(path, bucket)

		if cached, ok := t.cache.Load(id); ok {
			job.callback(cached.(image.Image))
			continue
		}

		var src image.Image
		var err error
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case isSupportedImage(ext):
			src, err = decodeImageFile(path)
		case isSupportedVideo(ext):
			src, err = t.videoFrame(path)
		}
		if err != nil || src == nil {
			continue
		}

		dst := squareCrop(src, bucket)
		if dst == nil {
			continue
		}

		t.cache.Store(id, dst)

		if t.cacheDir != "" {
			if key, err := t.cacheKey(path, bucket); err == nil {
				cachePath := filepath.Join(t.cacheDir, key+".jpg")
				if f, err := os.Create(cachePath); err == nil {
					_ = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
					f.Close()
				}
			}
		}

		job.callback(dst)
	}
}

// squareCrop scales the source to fill a side×side square and crops the
// overflow symmetrically, so every grid cell renders edge to edge.
func squareCrop(src image.Image, side int) *image.RGBA {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	var scaledW, scaledH int
	if srcW > srcH {
		scaledH = side
		scaledW = side * srcW / srcH
	} else {
		scaledW = side
		scaledH = side * srcH / srcW
	}

	xBase := (side - scaledW) / 2
	yBase := (side - scaledH) / 2
	target := image.Rect(xBase, yBase, xBase+scaledW, yBase+scaledH)

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.ApproxBiLinear.Scale(dst, target, src, b, draw.Src, nil)
	return dst
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// videoFrame grabs a single frame from the middle of the video with ffmpeg.
func (t *Thumbnailer) videoFrame(path string) (image.Image, error) {
	duration, err := t.videoDuration(path)
	if err != nil {
		duration = time.Second
	}

	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	// Input seeking (-ss before -i) is approximate but much faster, which
	// is the right trade for thumbnails.
	cmd := exec.Command(t.ffmpegPath, "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	applyHiddenWindow(cmd)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(&buf)
	return img, err
}

var videoDurationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

func (t *Thumbnailer) videoDuration(path string) (time.Duration, error) {
	cmd := exec.Command(t.ffmpegPath, "-i", path)
	applyHiddenWindow(cmd)
	// ffmpeg exits non-zero without an output file but still prints the
	// stream info we need to stderr.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	matches := videoDurationRe.FindStringSubmatch(stderr.String())
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not find duration in ffmpeg output")
	}

	var hours, minutes, seconds, centis int
	fmt.Sscanf(matches[1], "%d", &hours)
	fmt.Sscanf(matches[2], "%d", &minutes)
	fmt.Sscanf(matches[3], "%d", &seconds)
	fmt.Sscanf(matches[4], "%d", &centis)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis*10)*time.Millisecond, nil
}

func isSupportedImage(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif"
}

func isSupportedVideo(ext string) bool {
	return ext == ".mp4" || ext == ".mkv" || ext == ".avi" || ext == ".webm" || ext == ".mov"
}

// cacheKey derives a disk-cache name from the file's path, mtime, size, the
// head of its content and the render bucket, so edits and size changes miss.
func (t *Thumbnailer) cacheKey(path string, bucket int) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte(info.ModTime().String()))
	fmt.Fprintf(h, "%d|%d", info.Size(), bucket)

	if f, err := os.Open(absPath); err == nil {
		buf := make([]byte, 32*1024)
		n, _ := f.Read(buf)
		h.Write(buf[:n])
		f.Close()
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (t *Thumbnailer) cleanupCache() {
	if t.cacheDir == "" {
		return
	}

	files, err := os.ReadDir(t.cacheDir)
	if err != nil {
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cached []fileInfo
	var totalSize int64

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cached = append(cached, fileInfo{name: f.Name(), size: info.Size(), time: info.ModTime()})
		totalSize += info.Size()
	}

	if totalSize <= MaxCacheSize && len(cached) <= MaxCacheFiles {
		return
	}

	// Evict oldest first until under the 80% watermark.
	sort.Slice(cached, func(i, j int) bool {
		return cached[i].time.Before(cached[j].time)
	})

	for _, f := range cached {
		if totalSize <= int64(float64(MaxCacheSize)*0.8) && len(cached) <= int(float64(MaxCacheFiles)*0.8) {
			break
		}
		_ = os.Remove(filepath.Join(t.cacheDir, f.name))
		totalSize -= f.size
		cached = cached[1:]
	}
}
