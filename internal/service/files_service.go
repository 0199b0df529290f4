package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"io/fs"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"hostpanel/internal/event"
	"hostpanel/internal/model"
	"hostpanel/internal/storage"
	"hostpanel/internal/util"
	"hostpanel/pkg/apierror"
)

const (
	defaultThumbnailSize = 256
	maxThumbnailSize     = 1024
	maxThumbnailPixels   = 40_000_000
)

type FileLimits struct {
	MaxUpload int64
	MaxEdit   int64
}

// FileService is the sandboxed file manager.
type FileService struct {
	Panel

	store         *storage.Storage
	thumbnailRoot string
	limits        FileLimits
}

func NewFileService(panel Panel, store *storage.Storage, thumbnailRoot string, limits FileLimits) *FileService {
	if strings.TrimSpace(thumbnailRoot) == "" {
		thumbnailRoot = filepath.Join(os.TempDir(), "hostpanel-thumbnails")
	}
	return &FileService{Panel: panel, store: store, thumbnailRoot: thumbnailRoot, limits: limits}
}

func (s *FileService) List(_ context.Context, q model.ListQuery) (model.DirectoryListing, model.Meta, error) {
	current := storage.Clean(q.Path)
	info, err := s.store.Stat(current)
	if err != nil {
		return model.DirectoryListing{}, model.Meta{}, s.notFound(err, model.ErrDirectoryNotFound)
	}
	if !info.IsDir() {
		return model.DirectoryListing{}, model.Meta{}, apierror.BadRequest("path is not a directory", current)
	}

	entries, err := s.store.ReadDir(current)
	if err != nil {
		return model.DirectoryListing{}, model.Meta{}, err
	}

	items := make([]model.FileItem, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".upload-") {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		items = append(items, s.describe(path.Join(current, entry.Name()), info))
	}

	sortItems(items, q.Sort, q.Order)

	meta := model.NewMeta(q.Page, q.Limit, len(items))
	start, end := meta.Window()

	parent := "/"
	if current != "/" {
		parent = path.Dir(current)
	}

	return model.DirectoryListing{CurrentPath: current, ParentPath: parent, Items: items[start:end]}, meta, nil
}

func (s *FileService) Stat(clientPath string) (model.FileItem, error) {
	clientPath = storage.Clean(clientPath)
	info, err := s.store.Stat(clientPath)
	if err != nil {
		return model.FileItem{}, s.notFound(err, model.ErrFileNotFound)
	}
	return s.describe(clientPath, info), nil
}

func (s *FileService) CreateFolder(ctx context.Context, parent string, name string) (model.FileItem, error) {
	safe, err := util.SanitizeName(name, true)
	if err != nil {
		return model.FileItem{}, err
	}

	target := path.Join(storage.Clean(parent), safe)
	if err := s.store.Mkdir(target); err != nil {
		return model.FileItem{}, err
	}

	item, err := s.Stat(target)
	if err != nil {
		return model.FileItem{}, err
	}

	s.info(ctx, "Folder Created", fmt.Sprintf("Folder %s has been created.", safe))
	s.record(ctx, model.ActivityInfo, "files", "mkdir", "Folder created: "+target, "")
	s.publish(event.TypeDirCreated, item)
	return item, nil
}

// Upload stores one file under dir. An existing file of the same name is
// replaced only when overwrite is set.
func (s *FileService) Upload(ctx context.Context, dir string, filename string, r io.Reader, overwrite bool) (model.FileItem, error) {
	safe, err := util.SanitizeName(filename, true)
	if err != nil {
		return model.FileItem{}, err
	}

	dir = storage.Clean(dir)
	if info, err := s.store.Stat(dir); err != nil || !info.IsDir() {
		return model.FileItem{}, apierror.NotFound("directory not found", dir)
	}

	target := path.Join(dir, safe)
	if existing, err := s.store.Stat(target); err == nil {
		if existing.IsDir() || !overwrite {
			return model.FileItem{}, apierror.New("ALREADY_EXISTS", "path already exists", target, http.StatusConflict)
		}
	}

	if _, err := s.store.WriteFrom(target, r, s.limits.MaxUpload); err != nil {
		return model.FileItem{}, err
	}

	item, err := s.Stat(target)
	if err != nil {
		return model.FileItem{}, err
	}

	s.record(ctx, model.ActivityInfo, "files", "upload", "File uploaded: "+target, item.SizeHuman)
	s.publish(event.TypeFileUploaded, item)
	return item, nil
}

// UploadFinished raises one summary notification for a multipart upload.
func (s *FileService) UploadFinished(ctx context.Context, result model.UploadResult) {
	switch {
	case len(result.Failed) == 0 && len(result.Uploaded) > 0:
		s.info(ctx, "Upload Complete", fmt.Sprintf("%d file(s) uploaded.", len(result.Uploaded)))
	case len(result.Failed) > 0:
		s.failure(ctx, "Upload Failed", fmt.Sprintf("%d of %d file(s) could not be uploaded.",
			len(result.Failed), len(result.Failed)+len(result.Uploaded)))
	}
}

// Open returns a regular file for download. The caller closes it.
func (s *FileService) Open(clientPath string) (*os.File, model.FileItem, error) {
	item, err := s.Stat(clientPath)
	if err != nil {
		return nil, model.FileItem{}, err
	}
	if item.Type == model.KindDirectory {
		return nil, model.FileItem{}, apierror.BadRequest("path points to a directory", item.Path)
	}

	file, err := s.store.Open(item.Path)
	if err != nil {
		return nil, model.FileItem{}, err
	}
	return file, item, nil
}

// Archive streams a directory as a zip file into w.
func (s *FileService) Archive(clientPath string, w io.Writer) error {
	clientPath = storage.Clean(clientPath)
	resolved, err := s.store.Resolve(clientPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return s.notFound(err, model.ErrDirectoryNotFound)
	}
	if !info.IsDir() {
		return apierror.BadRequest("archive download requires a directory path", clientPath)
	}
	return util.WriteZip(w, resolved)
}

func ArchiveName(clientPath string) string {
	name := path.Base(storage.Clean(clientPath))
	if name == "/" || name == "." {
		name = "files"
	}
	return name + ".zip"
}

// ReadText loads a file for the editor. Binary content and files above the
// edit limit are refused.
func (s *FileService) ReadText(clientPath string) (model.TextFile, error) {
	file, item, err := s.Open(clientPath)
	if err != nil {
		return model.TextFile{}, err
	}
	defer file.Close()

	if s.limits.MaxEdit > 0 && item.Size > s.limits.MaxEdit {
		return model.TextFile{}, apierror.New("FILE_TOO_LARGE", "file is too large to edit", item.Path, http.StatusRequestEntityTooLarge)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return model.TextFile{}, err
	}
	if !utf8.Valid(data) {
		return model.TextFile{}, apierror.New("UNSUPPORTED_TYPE", "file is not valid UTF-8 text", item.Path, http.StatusUnsupportedMediaType)
	}

	return model.TextFile{Path: item.Path, Content: string(data), Size: item.Size, ModifiedAt: item.ModifiedAt}, nil
}

// SaveText replaces the content of an existing file, or creates it when its
// directory exists.
func (s *FileService) SaveText(ctx context.Context, clientPath string, content string) (model.TextFile, error) {
	clientPath = storage.Clean(clientPath)
	if clientPath == "/" {
		return model.TextFile{}, apierror.BadRequest("path is required", "path")
	}
	if s.limits.MaxEdit > 0 && int64(len(content)) > s.limits.MaxEdit {
		return model.TextFile{}, apierror.New("FILE_TOO_LARGE", "content exceeds the edit limit", clientPath, http.StatusRequestEntityTooLarge)
	}
	if !utf8.ValidString(content) {
		return model.TextFile{}, apierror.BadRequest("content must be valid UTF-8", clientPath)
	}
	if info, err := s.store.Stat(clientPath); err == nil && info.IsDir() {
		return model.TextFile{}, apierror.BadRequest("path points to a directory", clientPath)
	}
	if _, err := util.SanitizeName(path.Base(clientPath), true); err != nil {
		return model.TextFile{}, err
	}

	if _, err := s.store.WriteFrom(clientPath, strings.NewReader(content), s.limits.MaxEdit); err != nil {
		return model.TextFile{}, err
	}

	item, err := s.Stat(clientPath)
	if err != nil {
		return model.TextFile{}, err
	}

	s.info(ctx, "File Saved", fmt.Sprintf("%s has been saved successfully.", item.Name))
	s.record(ctx, model.ActivitySuccess, "files", "save", "File edited: "+clientPath, item.SizeHuman)
	return model.TextFile{Path: item.Path, Content: content, Size: item.Size, ModifiedAt: item.ModifiedAt}, nil
}

// Rename gives an entry a new name inside the same directory.
func (s *FileService) Rename(ctx context.Context, clientPath string, newName string) (model.FileItem, error) {
	clientPath = storage.Clean(clientPath)
	if clientPath == "/" {
		return model.FileItem{}, apierror.BadRequest("cannot rename the files root", clientPath)
	}

	safe, err := util.SanitizeName(newName, true)
	if err != nil {
		return model.FileItem{}, err
	}

	target := path.Join(path.Dir(clientPath), safe)
	if target == clientPath {
		return s.Stat(clientPath)
	}
	if err := s.store.Rename(clientPath, target); err != nil {
		return model.FileItem{}, err
	}

	item, err := s.Stat(target)
	if err != nil {
		return model.FileItem{}, err
	}

	s.info(ctx, "Renamed", fmt.Sprintf("%s has been renamed to %s.", path.Base(clientPath), safe))
	s.record(ctx, model.ActivityInfo, "files", "rename", "Renamed "+clientPath, "to "+target)
	return item, nil
}

func (s *FileService) Delete(ctx context.Context, clientPath string) error {
	item, err := s.Stat(clientPath)
	if err != nil {
		return err
	}
	if item.Path == "/" {
		return apierror.BadRequest("cannot delete the files root", item.Path)
	}

	if err := s.store.RemoveAll(item.Path); err != nil {
		return err
	}

	s.info(ctx, "Deleted", fmt.Sprintf("%s has been deleted.", item.Name))
	s.record(ctx, model.ActivityWarning, "files", "delete", "Deleted "+item.Path, string(item.Type))
	s.publish(event.TypeFileDeleted, item)
	return nil
}

// Thumbnail returns a cached JPEG preview no larger than size on either side.
// The cache entry is rebuilt when the source is newer.
func (s *FileService) Thumbnail(clientPath string, size int) (*os.File, os.FileInfo, error) {
	if size <= 0 {
		size = defaultThumbnailSize
	}
	size = min(size, maxThumbnailSize)

	src, item, err := s.Open(clientPath)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	if !util.IsThumbnailMIME(item.MimeType) {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "no thumbnail for this file type", item.MimeType, http.StatusUnsupportedMediaType)
	}

	if err := os.MkdirAll(s.thumbnailRoot, 0o755); err != nil {
		return nil, nil, err
	}

	thumbPath := s.thumbnailPath(item.Path, size)
	if thumbInfo, err := os.Stat(thumbPath); err == nil && !thumbInfo.ModTime().Before(item.ModifiedAt) {
		if cached, err := os.Open(thumbPath); err == nil {
			return cached, thumbInfo, nil
		}
	}

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxThumbnailPixels {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "image too large for a thumbnail",
			fmt.Sprintf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxThumbnailPixels), http.StatusUnsupportedMediaType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}
	if err := writeThumbnail(img, thumbPath, size); err != nil {
		return nil, nil, err
	}
	_ = os.Chtimes(thumbPath, time.Now(), item.ModifiedAt)

	out, err := os.Open(thumbPath)
	if err != nil {
		return nil, nil, err
	}
	info, err := out.Stat()
	if err != nil {
		_ = out.Close()
		return nil, nil, err
	}
	return out, info, nil
}

func writeThumbnail(src image.Image, dst string, size int) error {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", "", http.StatusUnsupportedMediaType)
	}

	ratio := math.Min(1, float64(size)/float64(max(width, height)))
	tw := max(1, int(math.Round(float64(width)*ratio)))
	th := max(1, int(math.Round(float64(height)*ratio)))

	canvas := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, bounds, draw.Over, nil)

	tmp, err := os.CreateTemp(filepath.Dir(dst), "thumb-*.jpg")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	encodeErr := jpeg.Encode(tmp, canvas, &jpeg.Options{Quality: 90})
	closeErr := tmp.Close()
	if encodeErr != nil {
		return encodeErr
	}
	if closeErr != nil {
		return closeErr
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *FileService) thumbnailPath(clientPath string, size int) string {
	sum := sha256.Sum256([]byte(clientPath + "|" + strconv.Itoa(size)))
	return filepath.Join(s.thumbnailRoot, hex.EncodeToString(sum[:])+".jpg")
}

func (s *FileService) describe(clientPath string, info fs.FileInfo) model.FileItem {
	item := model.FileItem{
		Name:        info.Name(),
		Path:        clientPath,
		Permissions: info.Mode().String(),
		ModifiedAt:  info.ModTime().UTC(),
	}
	if clientPath == "/" {
		item.Name = "/"
	}

	if info.IsDir() {
		item.Type = model.KindDirectory
		if children, err := s.store.ReadDir(clientPath); err == nil {
			count := len(children)
			item.ItemCount = &count
		}
		return item
	}

	item.Type = model.KindFile
	item.Size = info.Size()
	item.SizeHuman = humanizeSize(info.Size())
	item.Extension = strings.ToLower(filepath.Ext(info.Name()))

	if file, err := s.store.Open(clientPath); err == nil {
		if mimeType, err := util.DetectMIME(file, info.Name()); err == nil {
			item.MimeType = mimeType
		}
		_ = file.Close()
	}

	item.Editable = util.IsTextMIME(item.MimeType) && (s.limits.MaxEdit <= 0 || item.Size <= s.limits.MaxEdit)
	if util.IsThumbnailMIME(item.MimeType) {
		item.ThumbnailURL = "/api/v1/files/thumbnail?path=" + url.QueryEscape(clientPath)
	}
	return item
}

func (s *FileService) notFound(err error, sentinel error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return sentinel
	}
	return err
}

func sortItems(items []model.FileItem, sortBy string, order string) {
	field := strings.ToLower(strings.TrimSpace(sortBy))
	descending := strings.EqualFold(strings.TrimSpace(order), "desc")

	less := func(a, b model.FileItem) bool {
		switch field {
		case "size":
			return a.Size < b.Size
		case "modified_at":
			return a.ModifiedAt.Before(b.ModifiedAt)
		case "type":
			if a.Type != b.Type {
				return a.Type == model.KindDirectory
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func humanizeSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		value /= 1024
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
	}
	return fmt.Sprintf("%.1f PB", value/1024)
}
